package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"audioscribe/internal/catalog"
	"audioscribe/internal/testsupport"
)

func seedTrack(t *testing.T, env *cliTestEnv, track catalog.Track) catalog.Track {
	t.Helper()

	store := testsupport.MustOpenStore(t, env.cfg)
	defer store.Close()
	tracks := catalog.NewStore(store.DB())
	created, err := tracks.Create(context.Background(), track)
	if err != nil {
		t.Fatalf("seed track: %v", err)
	}
	return created
}

func TestListAndSearchTracks(t *testing.T) {
	env := setupCLITestEnv(t)
	seedTrack(t, env, catalog.Track{Title: "Morning Mix", Artist: "DJ Example", FilePath: "/l/a.mp3"})
	seedTrack(t, env, catalog.Track{Title: "Night Drive", FilePath: "/l/b.mp3"})

	stdout, _, err := runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "Morning Mix") || !strings.Contains(stdout, "Night Drive") {
		t.Fatalf("expected both tracks listed: %q", stdout)
	}

	stdout, _, err = runCLI(t, env, "search", "morning")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(stdout, "Morning Mix") || strings.Contains(stdout, "Night Drive") {
		t.Fatalf("unexpected search results: %q", stdout)
	}
}

func TestEditTrack(t *testing.T) {
	env := setupCLITestEnv(t)
	created := seedTrack(t, env, catalog.Track{Title: "Draft", FilePath: "/l/a.mp3"})

	stdout, _, err := runCLI(t, env, "edit", created.ID[:8], "--title", "Final", "--artist", "Someone")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !strings.Contains(stdout, "Someone - Final") {
		t.Fatalf("unexpected output: %q", stdout)
	}

	if _, _, err := runCLI(t, env, "edit", created.ID); err == nil {
		t.Fatal("expected error when no fields given")
	}
}

func TestDeleteAndPurgeTracks(t *testing.T) {
	env := setupCLITestEnv(t)
	created := seedTrack(t, env, catalog.Track{Title: "Temp", FilePath: "/l/a.mp3"})

	stdout, _, err := runCLI(t, env, "delete", created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(stdout, "Soft-deleted") {
		t.Fatalf("unexpected output: %q", stdout)
	}

	stdout, _, err = runCLI(t, env, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "No tracks found") {
		t.Fatalf("soft-deleted track should be hidden: %q", stdout)
	}

	if _, _, err := runCLI(t, env, "purge"); err == nil {
		t.Fatal("expected purge to require --confirm")
	}

	stdout, _, err = runCLI(t, env, "purge", "--confirm")
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if !strings.Contains(stdout, "Purged 1 track(s)") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestUploadTrack(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.cfg.Paths.OutputDir, "Morning Mix [abc].mp3")
	testsupport.WriteFile(t, source, 4096)
	created := seedTrack(t, env, catalog.Track{Title: "Morning Mix", Artist: "DJ Example", FilePath: source})

	stdout, _, err := runCLI(t, env, "upload", created.ID)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	want := filepath.Join(env.cfg.Paths.LibraryDir, "DJ Example - Morning Mix.mp3")
	if !strings.Contains(stdout, want) {
		t.Fatalf("expected destination %q in output: %q", want, stdout)
	}

	if _, _, err := runCLI(t, env, "upload"); err == nil {
		t.Fatal("expected error when neither TRACK_ID nor --job given")
	}
}
