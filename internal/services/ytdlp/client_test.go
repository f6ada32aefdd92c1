package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/yt-dlp"))
	if cli.binary != "/opt/yt-dlp" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestNewCLIWithAudioFormat(t *testing.T) {
	cli := NewCLI(WithAudioFormat("opus"))
	if cli.audioFormat != "opus" {
		t.Fatalf("expected audio format override, got %q", cli.audioFormat)
	}
}

func TestDownloadRequiresURL(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Download(context.Background(), "", "/tmp"); err == nil {
		t.Fatal("expected error when url is empty")
	}
}

func TestDownloadRequiresOutputDir(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Download(context.Background(), "https://example.com/a", ""); err == nil {
		t.Fatal("expected error when output directory is empty")
	}
}

func TestDownloadArguments(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "YTDLP_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	if _, err := cli.Download(context.Background(), "https://example.com/watch?v=x", t.TempDir()); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}

	for _, want := range []string{"-x", "--audio-format", "--windows-filenames", "--print"} {
		if findArg(capturedArgs, want) == -1 {
			t.Fatalf("expected yt-dlp command to include %s, got %v", want, capturedArgs)
		}
	}
	idx := findArg(capturedArgs, "--audio-format")
	if idx+1 >= len(capturedArgs) || capturedArgs[idx+1] != "mp3" {
		t.Fatalf("expected audio format mp3, got %v", capturedArgs)
	}
	if capturedArgs[len(capturedArgs)-1] != "https://example.com/watch?v=x" {
		t.Fatalf("expected url as final argument, got %v", capturedArgs)
	}
}

func TestDownloadSuccess(t *testing.T) {
	setHelperCommand(t, "success")

	cli := NewCLI()
	result, err := cli.Download(context.Background(), "https://example.com/a", t.TempDir())
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if result.FilePath != "/outputs/Track Title [abc123].mp3" {
		t.Fatalf("unexpected file path: %q", result.FilePath)
	}
	if result.URL != "https://example.com/a" {
		t.Fatalf("unexpected url: %q", result.URL)
	}
}

func TestDownloadFailureIncludesStderr(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	_, err := cli.Download(context.Background(), "https://example.com/a", t.TempDir())
	if err == nil {
		t.Fatal("expected download failure error")
	}
	if !strings.Contains(err.Error(), "unsupported url") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestDownloadEmptyOutput(t *testing.T) {
	setHelperCommand(t, "silent")

	cli := NewCLI()
	if _, err := cli.Download(context.Background(), "https://example.com/a", t.TempDir()); err == nil {
		t.Fatal("expected error when yt-dlp prints no path")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("YTDLP_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("YTDLP_HELPER_MODE") {
	case "success":
		fmt.Println("/outputs/Track Title [abc123].mp3")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "ERROR: unsupported url")
		os.Exit(1)
	case "silent":
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
