package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
	"audioscribe/internal/library"
	"audioscribe/internal/queue"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "upload [TRACK_ID]",
		Short: "Copy verified tracks into the library directory",
		Long: `Upload copies a cataloged track into library_dir under a sanitized
"Artist - Title" name and records the upload time. With --job every track
produced by that job is uploaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (jobID == "") {
				return fmt.Errorf("pass exactly one of TRACK_ID or --job")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				tracks := catalog.NewStore(store.DB())
				manager := library.NewManager(cfg, tracks, logger)
				out := cmd.OutOrStdout()

				if jobID != "" {
					item, err := store.GetByJobID(cmd.Context(), jobID)
					if err != nil {
						return err
					}
					if item == nil {
						return fmt.Errorf("job %q not found", jobID)
					}
					destinations, err := manager.UploadJob(cmd.Context(), item.JobID)
					for trackID, destination := range destinations {
						fmt.Fprintf(out, "Uploaded %s -> %s\n", shortID(trackID), destination)
					}
					return err
				}

				track, destination, err := manager.Upload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Uploaded %s -> %s\n", trackLabel(track), destination)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Upload every track produced by this job")
	return cmd
}
