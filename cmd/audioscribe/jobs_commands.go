package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"audioscribe/internal/config"
	"audioscribe/internal/queue"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage ingestion jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingestion jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var wanted queue.Status
			if statusFilter != "" {
				parsed, ok := queue.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q (known: %s)", statusFilter, joinStatuses(queue.AllStatuses()))
				}
				wanted = parsed
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				items, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if wanted != "" {
					filtered := items[:0]
					for _, item := range items {
						if item.Status == wanted {
							filtered = append(filtered, item)
						}
					}
					items = filtered
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs found")
					return nil
				}

				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						shortID(item.JobID),
						fmt.Sprintf("%d", len(item.URLs)),
						statusCell(item.Status, colorize),
						item.CreatedAt.Local().Format("2006-01-02 15:04"),
						item.ProgressMessage,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						{header: "Job"},
						{header: "URLs", align: alignRight},
						{header: "Status"},
						{header: "Created"},
						{header: "Progress"},
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum jobs to list (0 means all)")
	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by job status")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.GetByJobID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("job %q not found", args[0])
				}

				if asJSON {
					return writeJSON(cmd, jobView(item))
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job:      %s\n", item.JobID)
				fmt.Fprintf(out, "Status:   %s\n", item.Status)
				fmt.Fprintf(out, "Created:  %s\n", item.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Updated:  %s\n", item.UpdatedAt.Local().Format(time.RFC1123))
				if item.ProgressStage != "" {
					fmt.Fprintf(out, "Progress: %s - %s\n", item.ProgressStage, item.ProgressMessage)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    %s\n", item.ErrorMessage)
				}
				if item.NeedsReview {
					fmt.Fprintf(out, "Review:   %s\n", item.ReviewReason)
				}
				fmt.Fprintf(out, "URLs:\n")
				for _, url := range item.URLs {
					fmt.Fprintf(out, "  %s\n", url)
				}
				results := item.Results()
				if len(results) > 0 {
					fmt.Fprintln(out, "Files:")
					printJobResults(out, item)
				}
				return nil
			})
		},
	}

	addJSONFlag(cmd, &asJSON)
	return cmd
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all jobs from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the queue without --force")
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm removal of every job")
	return cmd
}

type jobDetails struct {
	JobID     string             `json:"job_id"`
	Status    string             `json:"status"`
	URLs      []string           `json:"urls"`
	Error     string             `json:"error,omitempty"`
	Review    string             `json:"review_reason,omitempty"`
	Results   []queue.FileResult `json:"results,omitempty"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

func jobView(item *queue.Item) jobDetails {
	return jobDetails{
		JobID:     item.JobID,
		Status:    string(item.Status),
		URLs:      item.URLs,
		Error:     item.ErrorMessage,
		Review:    item.ReviewReason,
		Results:   item.Results(),
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.Format(time.RFC3339),
	}
}

func joinStatuses(statuses []queue.Status) string {
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func trimmedOrDash(value string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return "-"
}
