package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audioscribe/internal/config"
	"audioscribe/internal/queue"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "ingest URL [URL...]",
		Short: "Queue one or more URLs for download and verification",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var queued *queue.Item
			err := ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.NewJob(cmd.Context(), args)
				if err != nil {
					return err
				}
				queued = item
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued job %s with %d URL(s)\n", queued.JobID, len(queued.URLs))

			if process {
				return runProcess(cmd, ctx, processOptions{})
			}
			fmt.Fprintln(out, "Run `audioscribe process` to start downloading")
			return nil
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Process the queue immediately after adding")
	return cmd
}
