package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"audioscribe/internal/config"
	"audioscribe/internal/logging"
	"audioscribe/internal/queue"
	"audioscribe/internal/services"
	"audioscribe/internal/services/ytdlp"
	"audioscribe/internal/stage"
)

// Downloader fetches every URL on a job into the output directory and records
// the downloaded file path per URL.
type Downloader struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	client ytdlp.Client
}

// NewDownloader constructs the download stage handler using the configured
// yt-dlp binary.
func NewDownloader(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Downloader {
	client := ytdlp.NewCLI(ytdlp.WithBinary(cfg.Tools.YtDlpBinary))
	return NewDownloaderWithClient(cfg, store, logger, client)
}

// NewDownloaderWithClient allows injecting the downloader client (used in tests).
func NewDownloaderWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ytdlp.Client) *Downloader {
	return &Downloader{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "downloader"),
		client: client,
	}
}

// SetLogger swaps in a stage-scoped logger.
func (d *Downloader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logging.NewComponentLogger(logger, "downloader")
	}
}

func (d *Downloader) Prepare(ctx context.Context, item *queue.Item) error {
	if len(item.URLs) == 0 {
		return services.Wrap(services.ErrValidation, "download", "validate inputs", "Job has no URLs to download", nil)
	}
	if err := os.MkdirAll(d.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "create output directory", fmt.Sprintf("Cannot create output directory %s", d.cfg.Paths.OutputDir), err)
	}
	item.SetProgress("Downloading", fmt.Sprintf("Fetching %d URL(s)", len(item.URLs)))
	return nil
}

func (d *Downloader) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	results := item.Results()
	if len(results) == 0 {
		results = make([]queue.FileResult, len(item.URLs))
		for i, url := range item.URLs {
			results[i] = queue.FileResult{URL: url}
		}
	}

	for i := range results {
		if results[i].FilePath != "" {
			continue
		}
		url := results[i].URL
		item.SetProgress("Downloading", fmt.Sprintf("Fetching %d of %d: %s", i+1, len(results), url))
		if err := item.SetResults(results); err != nil {
			return services.Wrap(services.ErrTransient, "download", "encode results", "Failed to encode download results", err)
		}
		if err := d.store.Update(ctx, item); err != nil {
			logger.Warn("failed to persist download progress", logging.Error(err))
		}

		downloaded, err := d.download(ctx, url)
		if err != nil {
			if errors.Is(err, ytdlp.ErrNotInstalled) {
				return services.Wrap(services.ErrConfiguration, "download", "run yt-dlp", "yt-dlp is not installed or not on PATH", err)
			}
			return services.Wrap(services.ErrExternalTool, "download", "run yt-dlp", fmt.Sprintf("Download failed for %s", url), err)
		}

		results[i].FilePath = downloaded.FilePath
		logger.Info(
			"download complete",
			logging.String("url", url),
			logging.String("file", downloaded.FilePath),
		)
	}

	if err := item.SetResults(results); err != nil {
		return services.Wrap(services.ErrTransient, "download", "encode results", "Failed to encode download results", err)
	}
	item.SetProgress("Downloading", fmt.Sprintf("Fetched %d file(s)", len(results)))
	return nil
}

func (d *Downloader) download(ctx context.Context, url string) (ytdlp.DownloadResult, error) {
	if d.cfg.Tools.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(d.cfg.Tools.DownloadTimeout)*time.Second)
		defer cancel()
	}
	return d.client.Download(ctx, url, d.cfg.Paths.OutputDir)
}

func (d *Downloader) HealthCheck(ctx context.Context) stage.Health {
	const name = "downloader"
	if d.client == nil {
		return stage.Unhealthy(name, "downloader client not configured")
	}
	if strings.TrimSpace(d.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	return stage.Healthy(name)
}

var _ stage.Handler = (*Downloader)(nil)
