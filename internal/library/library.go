// Package library copies verified tracks into the final library directory
// and stamps the catalog with the upload time.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"audioscribe/internal/catalog"
	"audioscribe/internal/config"
	"audioscribe/internal/fileutil"
	"audioscribe/internal/logging"
	"audioscribe/internal/services"
	"audioscribe/internal/textutil"
)

// Manager publishes cataloged tracks into the library directory.
type Manager struct {
	cfg    *config.Config
	tracks catalog.Catalog
	logger *slog.Logger
}

// NewManager constructs a library manager.
func NewManager(cfg *config.Config, tracks catalog.Catalog, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		tracks: tracks,
		logger: logging.NewComponentLogger(logger, "library"),
	}
}

// Upload copies the track's file into the library directory under a
// sanitized name derived from the track title, then marks the track uploaded.
// The copy is verified by size and checksum before the catalog is updated.
func (m *Manager) Upload(ctx context.Context, trackID string) (catalog.Track, string, error) {
	libraryDir := strings.TrimSpace(m.cfg.Paths.LibraryDir)
	if libraryDir == "" {
		return catalog.Track{}, "", services.Wrap(services.ErrConfiguration, "upload", "validate config", "library_dir is not configured", nil)
	}

	track, err := m.tracks.Get(ctx, trackID)
	if err != nil {
		return catalog.Track{}, "", err
	}

	if _, err := os.Stat(track.FilePath); err != nil {
		return catalog.Track{}, "", services.Wrap(services.ErrValidation, "upload", "stat source", fmt.Sprintf("Track file missing: %s", track.FilePath), err)
	}
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return catalog.Track{}, "", services.Wrap(services.ErrConfiguration, "upload", "create library directory", fmt.Sprintf("Cannot create library directory %s", libraryDir), err)
	}

	destination := filepath.Join(libraryDir, m.destinationName(track))
	if err := fileutil.CopyFileVerified(track.FilePath, destination); err != nil {
		return catalog.Track{}, "", services.Wrap(services.ErrTransient, "upload", "copy file", fmt.Sprintf("Copy to library failed for %s", track.FilePath), err)
	}

	updated, err := m.tracks.MarkUploaded(ctx, track.ID)
	if err != nil {
		return catalog.Track{}, "", err
	}

	logger := logging.WithContext(ctx, m.logger)
	logger.Info(
		"track uploaded",
		logging.String("track_id", updated.ID),
		logging.String("destination", destination),
	)
	return updated, destination, nil
}

// UploadJob uploads every live track produced by a job. It returns the
// destinations keyed by track ID.
func (m *Manager) UploadJob(ctx context.Context, jobID string) (map[string]string, error) {
	tracks, err := m.tracks.ByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "upload", "resolve job", fmt.Sprintf("No tracks cataloged for job %s", jobID), nil)
	}

	destinations := make(map[string]string, len(tracks))
	for _, track := range tracks {
		_, destination, err := m.Upload(ctx, track.ID)
		if err != nil {
			return destinations, err
		}
		destinations[track.ID] = destination
	}
	return destinations, nil
}

func (m *Manager) destinationName(track catalog.Track) string {
	title := strings.TrimSpace(track.Title)
	if title == "" {
		title = textutil.DeriveTitle(track.FilePath)
	}
	name := textutil.SanitizeFileName(title)
	ext := filepath.Ext(track.FilePath)
	if ext == "" {
		ext = ".mp3"
	}
	if artist := textutil.SanitizeFileName(strings.TrimSpace(track.Artist)); artist != "" {
		return fmt.Sprintf("%s - %s%s", artist, name, ext)
	}
	return name + ext
}
