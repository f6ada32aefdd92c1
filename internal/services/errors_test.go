package services

import (
	"errors"
	"testing"

	"audioscribe/internal/queue"
)

func TestWrapIncludesContext(t *testing.T) {
	err := Wrap(ErrExternalTool, "download", "yt-dlp", "exit status 1", errors.New("boom"))
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	want := "external tool error: download: yt-dlp: exit status 1: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "verify", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want queue.Status
	}{
		{Wrap(ErrValidation, "verify", "", "bad file", nil), queue.StatusReview},
		{Wrap(ErrConfiguration, "download", "", "missing dir", nil), queue.StatusReview},
		{Wrap(ErrNotFound, "process", "", "no such job", nil), queue.StatusReview},
		{Wrap(ErrExternalTool, "download", "", "exit 1", nil), queue.StatusFailed},
		{errors.New("plain"), queue.StatusFailed},
	}
	for _, tc := range cases {
		if got := FailureStatus(tc.err); got != tc.want {
			t.Fatalf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestMessageStripsMarker(t *testing.T) {
	err := Wrap(ErrValidation, "verify", "rules", "Invalid or zero duration", nil)
	if got := Message(err); got != "verify: rules: Invalid or zero duration" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := Message(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}
