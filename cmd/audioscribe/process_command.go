package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
	"audioscribe/internal/deps"
	"audioscribe/internal/ingest"
	"audioscribe/internal/queue"
	"audioscribe/internal/stageexec"
	"audioscribe/internal/verify"
)

type processOptions struct {
	strict bool
	limit  int
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Download and verify every pending job in the queue",
		Long: `Process drains the queue one job at a time: each job's URLs are
downloaded with yt-dlp, the resulting files are verified with ffprobe, and
passing tracks are registered in the catalog.

The exit code reflects the worst verdict across all processed files:
0 when everything passed, 1 when any file verified with warnings, and
2 when any file failed verification or a job could not be processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warning verdicts as failures")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of jobs to process (0 means all)")
	return cmd
}

func runProcess(cmd *cobra.Command, ctx *commandContext, opts processOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.strict {
		cfg.Verify.Strict = true
	}

	if err := checkRequiredBinaries(cfg); err != nil {
		return err
	}

	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire processing lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another audioscribe process is already running (lock: %s)", cfg.LockPath())
	}
	defer lock.Unlock()

	return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
		cmdCtx := cmd.Context()

		if reset, err := store.ResetStuckProcessing(cmdCtx); err != nil {
			return err
		} else if reset > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d interrupted job(s)\n", reset)
		}

		tracks := catalog.NewStore(store.DB())
		downloader := ingest.NewDownloader(cfg, store, logger)
		checker := ingest.NewChecker(cfg, store, logger, tracks)

		out := cmd.OutOrStdout()
		worst := verify.VerdictOK
		processed := 0

		for {
			if opts.limit > 0 && processed >= opts.limit {
				break
			}
			item, err := store.NextPending(cmdCtx)
			if err != nil {
				return err
			}
			if item == nil {
				break
			}
			processed++

			fmt.Fprintf(out, "Processing job %s (%d URL(s))\n", item.JobID, len(item.URLs))

			if err := stageexec.Run(cmdCtx, stageexec.Options{
				Logger:     logger,
				Store:      store,
				Handler:    downloader,
				StageName:  "download",
				Processing: queue.StatusDownloading,
				Done:       queue.StatusDownloaded,
				Item:       item,
			}); err != nil {
				fmt.Fprintf(out, "  download failed: %s\n", item.ErrorMessage)
				worst = worstVerdict(worst, verify.VerdictFailed)
				continue
			}

			err = stageexec.Run(cmdCtx, stageexec.Options{
				Logger:     logger,
				Store:      store,
				Handler:    checker,
				StageName:  "verify",
				Processing: queue.StatusVerifying,
				Done:       queue.StatusVerified,
				Item:       item,
			})
			worst = worstVerdict(worst, jobVerdict(item, cfg.Verify.Strict))
			printJobResults(out, item)
			if err != nil {
				continue
			}

			item.Status = queue.StatusCompleted
			item.SetProgress("Completed", fmt.Sprintf("%d file(s) ready", len(item.Results())))
			if err := store.Update(cmdCtx, item); err != nil {
				return err
			}
		}

		if processed == 0 {
			fmt.Fprintln(out, "Queue is empty")
			return nil
		}

		switch worst {
		case verify.VerdictFailed:
			return &exitCodeError{code: 2}
		case verify.VerdictWarning:
			return &exitCodeError{code: 1}
		default:
			return nil
		}
	})
}

func checkRequiredBinaries(cfg *config.Config) error {
	statuses := deps.CheckBinaries(deps.Required(cfg.Tools.YtDlpBinary, cfg.Tools.FFprobeBinary))
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
	}
	return nil
}

// jobVerdict derives the worst per-file verdict recorded on a job. Under
// strict mode a warning counts as a failure.
func jobVerdict(item *queue.Item, strict bool) verify.Verdict {
	results := item.Results()
	if len(results) == 0 {
		return verify.VerdictFailed
	}
	verdict := verify.VerdictOK
	for _, result := range results {
		switch verify.Verdict(result.Verdict) {
		case verify.VerdictFailed:
			verdict = verify.VerdictFailed
		case verify.VerdictWarning:
			if strict {
				verdict = verify.VerdictFailed
			} else {
				verdict = worstVerdict(verdict, verify.VerdictWarning)
			}
		case verify.VerdictOK:
		default:
			verdict = verify.VerdictFailed
		}
		if verdict == verify.VerdictFailed {
			break
		}
	}
	return verdict
}

func worstVerdict(current, candidate verify.Verdict) verify.Verdict {
	rank := map[verify.Verdict]int{
		verify.VerdictOK:      0,
		verify.VerdictWarning: 1,
		verify.VerdictFailed:  2,
	}
	if rank[candidate] > rank[current] {
		return candidate
	}
	return current
}

func printJobResults(out io.Writer, item *queue.Item) {
	for _, result := range item.Results() {
		label := result.FilePath
		if label == "" {
			label = result.URL
		}
		fmt.Fprintf(out, "  %-7s %s\n", strings.ToUpper(result.Verdict), label)
		for _, warning := range result.Warnings {
			fmt.Fprintf(out, "          warning: %s\n", warning)
		}
		for _, failure := range result.Errors {
			fmt.Fprintf(out, "          error: %s\n", failure)
		}
	}
}
