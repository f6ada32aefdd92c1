package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"audioscribe/internal/ingest"
	"audioscribe/internal/logging"
	"audioscribe/internal/queue"
	"audioscribe/internal/services"
	"audioscribe/internal/services/ytdlp"
	"audioscribe/internal/stageexec"
	"audioscribe/internal/testsupport"
)

type fakeDownloader struct {
	calls []string
	fail  map[string]error
}

func (f *fakeDownloader) Download(_ context.Context, url, outputDir string) (ytdlp.DownloadResult, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.fail[url]; ok {
		return ytdlp.DownloadResult{}, err
	}
	path := filepath.Join(outputDir, fmt.Sprintf("track-%d.mp3", len(f.calls)))
	return ytdlp.DownloadResult{URL: url, FilePath: path}, nil
}

func TestDownloaderRecordsFilePaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a", "https://example.com/b")

	client := &fakeDownloader{}
	handler := ingest.NewDownloaderWithClient(cfg, store, logging.NewNop(), client)

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "download",
		Processing: queue.StatusDownloading,
		Done:       queue.StatusDownloaded,
		Item:       item,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(client.calls) != 2 {
		t.Fatalf("expected 2 downloads, got %v", client.calls)
	}
	results := item.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %#v", results)
	}
	for _, result := range results {
		if result.FilePath == "" {
			t.Fatalf("expected file path recorded: %#v", result)
		}
	}
	if item.Status != queue.StatusDownloaded {
		t.Fatalf("expected downloaded status, got %s", item.Status)
	}
}

func TestDownloaderFailureMarksJobFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/bad")

	client := &fakeDownloader{fail: map[string]error{
		"https://example.com/bad": errors.New("yt-dlp failed: ERROR: unavailable"),
	}}
	handler := ingest.NewDownloaderWithClient(cfg, store, logging.NewNop(), client)

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "download",
		Processing: queue.StatusDownloading,
		Done:       queue.StatusDownloaded,
		Item:       item,
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}

	fetched, getErr := store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID failed: %v", getErr)
	}
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", fetched.Status)
	}
}

func TestDownloaderMissingBinaryRoutesToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	client := &fakeDownloader{fail: map[string]error{
		"https://example.com/a": fmt.Errorf("%w: binary %q not found", ytdlp.ErrNotInstalled, "yt-dlp"),
	}}
	handler := ingest.NewDownloaderWithClient(cfg, store, logging.NewNop(), client)

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "download",
		Processing: queue.StatusDownloading,
		Done:       queue.StatusDownloaded,
		Item:       item,
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	fetched, getErr := store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID failed: %v", getErr)
	}
	if fetched.Status != queue.StatusReview {
		t.Fatalf("expected review status, got %s", fetched.Status)
	}
}

func TestDownloaderSkipsAlreadyDownloaded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a", "https://example.com/b")

	if err := item.SetResults([]queue.FileResult{
		{URL: "https://example.com/a", FilePath: "/already/here.mp3"},
		{URL: "https://example.com/b"},
	}); err != nil {
		t.Fatalf("SetResults failed: %v", err)
	}
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	client := &fakeDownloader{}
	handler := ingest.NewDownloaderWithClient(cfg, store, logging.NewNop(), client)

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "download",
		Processing: queue.StatusDownloading,
		Done:       queue.StatusDownloaded,
		Item:       item,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(client.calls) != 1 || client.calls[0] != "https://example.com/b" {
		t.Fatalf("expected only the missing URL downloaded, got %v", client.calls)
	}
}
