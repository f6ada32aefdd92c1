package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"audioscribe/internal/catalog"
	"audioscribe/internal/ingest"
	"audioscribe/internal/logging"
	"audioscribe/internal/media/ffprobe"
	"audioscribe/internal/queue"
	"audioscribe/internal/services"
	"audioscribe/internal/stageexec"
	"audioscribe/internal/testsupport"
	"audioscribe/internal/verify"
)

type stubInspector struct {
	results map[string]ffprobe.Result
}

func (s *stubInspector) Inspect(_ context.Context, path string) (ffprobe.Result, error) {
	result, ok := s.results[path]
	if !ok {
		return ffprobe.Result{}, errors.New("unexpected path")
	}
	return result, nil
}

func probeResult(duration, bitrate string) ffprobe.Result {
	return ffprobe.Result{
		Format: ffprobe.Format{Duration: duration, BitRate: bitrate, Size: "1048576"},
		Streams: []ffprobe.Stream{{
			Index:      0,
			CodecType:  "audio",
			CodecName:  "mp3",
			SampleRate: "44100",
			Channels:   2,
		}},
	}
}

func writeDownloads(t *testing.T, store *queue.Store, item *queue.Item, paths ...string) {
	t.Helper()
	results := make([]queue.FileResult, len(paths))
	for i, path := range paths {
		testsupport.WriteFile(t, path, 1024)
		results[i] = queue.FileResult{URL: item.URLs[i], FilePath: path}
	}
	if err := item.SetResults(results); err != nil {
		t.Fatalf("SetResults failed: %v", err)
	}
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
}

func TestCheckerVerifiesAndCatalogsCleanFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	path := filepath.Join(cfg.Paths.OutputDir, "Morning Mix [abc123].mp3")
	writeDownloads(t, store, item, path)

	inspector := &stubInspector{results: map[string]ffprobe.Result{
		path: probeResult("180.0", "192000"),
	}}
	tracks := catalog.NewStore(store.DB())
	handler := ingest.NewCheckerWithVerifier(cfg, store, logging.NewNop(), tracks, verify.NewVerifier(inspector))

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "verify",
		Processing: queue.StatusVerifying,
		Done:       queue.StatusVerified,
		Item:       item,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	results := item.Results()
	if results[0].Verdict != "ok" {
		t.Fatalf("expected ok verdict, got %#v", results[0])
	}
	if results[0].TrackID == "" {
		t.Fatal("expected track registered")
	}

	track, getErr := tracks.Get(context.Background(), results[0].TrackID)
	if getErr != nil {
		t.Fatalf("Get track failed: %v", getErr)
	}
	if track.Title != "Morning Mix" {
		t.Fatalf("expected derived title, got %q", track.Title)
	}
	if track.BitrateKbps != 192 || track.Channels != 2 {
		t.Fatalf("expected metrics copied onto track, got %#v", track)
	}
}

func TestCheckerWarningVerdictStillCatalogs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	path := filepath.Join(cfg.Paths.OutputDir, "Low Bitrate [x].mp3")
	writeDownloads(t, store, item, path)

	inspector := &stubInspector{results: map[string]ffprobe.Result{
		path: probeResult("200.0", "64000"),
	}}
	tracks := catalog.NewStore(store.DB())
	handler := ingest.NewCheckerWithVerifier(cfg, store, logging.NewNop(), tracks, verify.NewVerifier(inspector))

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "verify",
		Processing: queue.StatusVerifying,
		Done:       queue.StatusVerified,
		Item:       item,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	results := item.Results()
	if results[0].Verdict != "warning" {
		t.Fatalf("expected warning verdict, got %#v", results[0])
	}
	if len(results[0].Warnings) != 1 || results[0].Warnings[0] != "Low bitrate: 64 kbps < 96 kbps" {
		t.Fatalf("unexpected warnings: %#v", results[0].Warnings)
	}
	if results[0].TrackID == "" {
		t.Fatal("expected warning file still cataloged")
	}
}

func TestCheckerStrictModeFailsWarnings(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrict())
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	path := filepath.Join(cfg.Paths.OutputDir, "Low Bitrate [x].mp3")
	writeDownloads(t, store, item, path)

	inspector := &stubInspector{results: map[string]ffprobe.Result{
		path: probeResult("200.0", "64000"),
	}}
	tracks := catalog.NewStore(store.DB())
	handler := ingest.NewCheckerWithVerifier(cfg, store, logging.NewNop(), tracks, verify.NewVerifier(inspector))

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "verify",
		Processing: queue.StatusVerifying,
		Done:       queue.StatusVerified,
		Item:       item,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error in strict mode, got %v", err)
	}

	fetched, getErr := store.GetByID(context.Background(), item.ID)
	if getErr != nil {
		t.Fatalf("GetByID failed: %v", getErr)
	}
	if fetched.Status != queue.StatusReview {
		t.Fatalf("expected review status, got %s", fetched.Status)
	}
}

func TestCheckerFailedVerdictParksJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	path := filepath.Join(cfg.Paths.OutputDir, "Broken [x].mp3")
	writeDownloads(t, store, item, path)

	inspector := &stubInspector{results: map[string]ffprobe.Result{
		path: probeResult("0", "64000"),
	}}
	tracks := catalog.NewStore(store.DB())
	handler := ingest.NewCheckerWithVerifier(cfg, store, logging.NewNop(), tracks, verify.NewVerifier(inspector))

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "verify",
		Processing: queue.StatusVerifying,
		Done:       queue.StatusVerified,
		Item:       item,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	results := item.Results()
	if results[0].Verdict != "failed" {
		t.Fatalf("expected failed verdict, got %#v", results[0])
	}
	if results[0].TrackID != "" {
		t.Fatal("failed file must not be cataloged")
	}
	if len(results[0].Errors) != 1 || results[0].Errors[0] != "Invalid or zero duration" {
		t.Fatalf("unexpected errors: %#v", results[0].Errors)
	}

	warnings := results[0].Warnings
	if len(warnings) != 1 || warnings[0] != "Low bitrate: 64 kbps < 96 kbps" {
		t.Fatalf("expected bitrate warning alongside duration error, got %#v", warnings)
	}
}

func TestCheckerRequiresDownloadedFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewJob(t, store, "https://example.com/a")

	tracks := catalog.NewStore(store.DB())
	handler := ingest.NewCheckerWithVerifier(cfg, store, logging.NewNop(), tracks, verify.NewVerifier(&stubInspector{}))

	err := stageexec.Run(context.Background(), stageexec.Options{
		Logger:     logging.NewNop(),
		Store:      store,
		Handler:    handler,
		StageName:  "verify",
		Processing: queue.StatusVerifying,
		Done:       queue.StatusVerified,
		Item:       item,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
