package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
	"audioscribe/internal/logging"
	"audioscribe/internal/media/ffprobe"
	"audioscribe/internal/queue"
	"audioscribe/internal/services"
	"audioscribe/internal/stage"
	"audioscribe/internal/textutil"
	"audioscribe/internal/verify"
)

// Checker runs the verification rules over each downloaded file and records
// per-file verdicts. Files that pass are registered in the track catalog.
type Checker struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	verifier *verify.Verifier
	tracks   catalog.Catalog
}

// NewChecker constructs the verify stage handler using the configured ffprobe
// binary and the shared track catalog.
func NewChecker(cfg *config.Config, store *queue.Store, logger *slog.Logger, tracks catalog.Catalog) *Checker {
	verifier := verify.NewVerifier(
		ffprobe.NewProber(cfg.Tools.FFprobeBinary),
		verify.WithThresholds(cfg.Verify.Thresholds()),
	)
	return NewCheckerWithVerifier(cfg, store, logger, tracks, verifier)
}

// NewCheckerWithVerifier allows injecting the verifier (used in tests).
func NewCheckerWithVerifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, tracks catalog.Catalog, verifier *verify.Verifier) *Checker {
	return &Checker{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "checker"),
		verifier: verifier,
		tracks:   tracks,
	}
}

// SetLogger swaps in a stage-scoped logger.
func (c *Checker) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logging.NewComponentLogger(logger, "checker")
	}
}

func (c *Checker) Prepare(ctx context.Context, item *queue.Item) error {
	results := item.Results()
	if len(results) == 0 {
		return services.Wrap(services.ErrValidation, "verify", "validate inputs", "No downloaded files to verify; run the download stage first", nil)
	}
	for _, result := range results {
		if strings.TrimSpace(result.FilePath) == "" {
			return services.Wrap(services.ErrValidation, "verify", "validate inputs", fmt.Sprintf("URL %s has no downloaded file", result.URL), nil)
		}
	}
	item.SetProgress("Verifying", fmt.Sprintf("Checking %d file(s)", len(results)))
	return nil
}

func (c *Checker) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	results := item.Results()

	var failedFiles, warningFiles []string
	for i := range results {
		result, err := c.verifyFile(ctx, results[i].FilePath)
		if err != nil {
			return services.Wrap(services.ErrTransient, "verify", "probe file", fmt.Sprintf("Verification could not run for %s", results[i].FilePath), err)
		}

		results[i].Verdict = string(result.Verdict)
		results[i].Warnings = result.Warnings
		results[i].Errors = result.Errors

		logger.Info(
			"file verified",
			logging.String("file", results[i].FilePath),
			logging.String("verdict", string(result.Verdict)),
			logging.Int("warning_count", len(result.Warnings)),
			logging.Int("error_count", len(result.Errors)),
		)

		switch result.Verdict {
		case verify.VerdictFailed:
			failedFiles = append(failedFiles, fmt.Sprintf("%s: %s", results[i].FilePath, strings.Join(result.Errors, "; ")))
			continue
		case verify.VerdictWarning:
			warningFiles = append(warningFiles, fmt.Sprintf("%s: %s", results[i].FilePath, strings.Join(result.Warnings, "; ")))
		}

		track, err := c.registerTrack(ctx, item, results[i], result)
		if err != nil {
			return services.Wrap(services.ErrTransient, "verify", "register track", fmt.Sprintf("Failed to catalog %s", results[i].FilePath), err)
		}
		results[i].TrackID = track.ID
	}

	if err := item.SetResults(results); err != nil {
		return services.Wrap(services.ErrTransient, "verify", "encode results", "Failed to encode verification results", err)
	}

	if len(failedFiles) > 0 {
		return services.Wrap(services.ErrValidation, "verify", "evaluate", fmt.Sprintf("%d file(s) failed verification: %s", len(failedFiles), strings.Join(failedFiles, "; ")), nil)
	}
	if len(warningFiles) > 0 && c.cfg.Verify.Strict {
		return services.Wrap(services.ErrValidation, "verify", "evaluate", fmt.Sprintf("strict mode: %d file(s) verified with warnings: %s", len(warningFiles), strings.Join(warningFiles, "; ")), nil)
	}

	if len(warningFiles) > 0 {
		item.SetProgress("Verifying", fmt.Sprintf("%d file(s) verified, %d with warnings", len(results), len(warningFiles)))
	} else {
		item.SetProgress("Verifying", fmt.Sprintf("%d file(s) verified", len(results)))
	}
	return nil
}

func (c *Checker) verifyFile(ctx context.Context, path string) (verify.Result, error) {
	if c.cfg.Tools.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Tools.ProbeTimeout)*time.Second)
		defer cancel()
	}
	return c.verifier.File(ctx, path)
}

func (c *Checker) registerTrack(ctx context.Context, item *queue.Item, result queue.FileResult, verified verify.Result) (catalog.Track, error) {
	track := catalog.Track{
		JobID:     item.JobID,
		Title:     textutil.DeriveTitle(result.FilePath),
		SourceURL: result.URL,
		FilePath:  result.FilePath,
	}
	if verified.Metrics.DurationSeconds != nil {
		track.DurationSeconds = *verified.Metrics.DurationSeconds
	}
	if verified.Metrics.BitrateKbps != nil {
		track.BitrateKbps = *verified.Metrics.BitrateKbps
	}
	if verified.Metrics.SampleRateHz != nil {
		track.SampleRateHz = *verified.Metrics.SampleRateHz
	}
	if verified.Metrics.Channels != nil {
		track.Channels = *verified.Metrics.Channels
	}
	if verified.Metrics.Codec != nil {
		track.Codec = *verified.Metrics.Codec
	}
	if verified.Metrics.SizeBytes != nil {
		track.SizeBytes = *verified.Metrics.SizeBytes
	}
	return c.tracks.Create(ctx, track)
}

func (c *Checker) HealthCheck(ctx context.Context) stage.Health {
	const name = "checker"
	if c.verifier == nil {
		return stage.Unhealthy(name, "verifier not configured")
	}
	if c.tracks == nil {
		return stage.Unhealthy(name, "track catalog not configured")
	}
	return stage.Healthy(name)
}

var _ stage.Handler = (*Checker)(nil)
