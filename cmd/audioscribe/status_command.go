package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
	"audioscribe/internal/deps"
	"audioscribe/internal/ingest"
	"audioscribe/internal/logging"
	"audioscribe/internal/queue"
	"audioscribe/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue and dependency status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}

				stages := stageHealth(cmd.Context(), cfg, store)

				if asJSON {
					return writeJSON(cmd, statusPayload{
						Stats:  statsToStringMap(stats),
						Health: health,
						Stages: stages,
					})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				if health.Total == 0 {
					fmt.Fprintln(out, "Queue is empty")
				} else {
					rows := buildStatusRows(stats)
					fmt.Fprintln(out, renderTable(
						[]tableColumn{{header: "Status"}, {header: "Count", align: alignRight}},
						rows,
					))
				}

				statuses := deps.CheckBinaries(deps.Required(cfg.Tools.YtDlpBinary, cfg.Tools.FFprobeBinary))
				for _, status := range statuses {
					kind := statusOK
					message := status.Command
					if !status.Available {
						kind = statusError
						message = status.Detail
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
				}
				for _, check := range stages {
					kind := statusOK
					message := "ready"
					if !check.Ready {
						kind = statusError
						message = check.Detail
					}
					fmt.Fprintln(out, renderStatusLine(check.Name, kind, message, colorize))
				}
				return nil
			})
		},
	}

	addJSONFlag(cmd, &asJSON)
	return cmd
}

type statusPayload struct {
	Stats  map[string]int      `json:"stats"`
	Health queue.HealthSummary `json:"health"`
	Stages []stage.Health      `json:"stages"`
}

// stageHealth asks each pipeline stage handler whether it could run now.
func stageHealth(ctx context.Context, cfg *config.Config, store *queue.Store) []stage.Health {
	logger := logging.NewNop()
	handlers := []stage.Handler{
		ingest.NewDownloader(cfg, store, logger),
		ingest.NewChecker(cfg, store, logger, catalog.NewStore(store.DB())),
	}
	checks := make([]stage.Health, 0, len(handlers))
	for _, handler := range handlers {
		checks = append(checks, handler.HealthCheck(ctx))
	}
	return checks
}

func statsToStringMap(stats map[queue.Status]int) map[string]int {
	converted := make(map[string]int, len(stats))
	for status, count := range stats {
		converted[string(status)] = count
	}
	return converted
}

func buildStatusRows(stats map[queue.Status]int) [][]string {
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, fmt.Sprintf("%d", stats[queue.Status(key)])})
	}
	return rows
}
