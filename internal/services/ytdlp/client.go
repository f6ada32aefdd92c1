package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// ErrNotInstalled indicates the yt-dlp binary could not be found.
var ErrNotInstalled = errors.New("yt-dlp not installed")

// stderrTailBytes bounds how much tool output is carried into error messages.
const stderrTailBytes = 800

// DownloadResult describes one completed download.
type DownloadResult struct {
	URL      string
	FilePath string
}

// Client defines yt-dlp download behaviour.
type Client interface {
	Download(ctx context.Context, url, outputDir string) (DownloadResult, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithAudioFormat overrides the extracted audio format.
func WithAudioFormat(format string) Option {
	return func(c *CLI) {
		if format != "" {
			c.audioFormat = format
		}
	}
}

// CLI wraps the yt-dlp command-line downloader.
type CLI struct {
	binary      string
	audioFormat string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp", audioFormat: "mp3"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Download fetches url into outputDir, extracting audio, and returns the
// final file path yt-dlp reports after post-processing moves.
func (c *CLI) Download(ctx context.Context, url, outputDir string) (DownloadResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return DownloadResult{}, errors.New("url required")
	}
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return DownloadResult{}, errors.New("output directory required")
	}

	template := filepath.Join(outputDir, "%(title)s [%(id)s].%(ext)s")
	args := []string{
		"--windows-filenames",
		"--extractor-args", "youtube:player_client=android",
		"-x",
		"--audio-format", c.audioFormat,
		"--print", "after_move:filepath",
		"-o", template,
		url,
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return DownloadResult{}, fmt.Errorf("%w: binary %q not found", ErrNotInstalled, c.binary)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return DownloadResult{}, fmt.Errorf("yt-dlp failed: %s", stderrTail(stderr.String(), err))
		}
		return DownloadResult{}, fmt.Errorf("run yt-dlp: %w", err)
	}

	path := lastLine(stdout.String())
	if path == "" {
		return DownloadResult{}, errors.New("yt-dlp reported no output file")
	}
	return DownloadResult{URL: url, FilePath: path}, nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

func stderrTail(output string, err error) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return err.Error()
	}
	if len(trimmed) > stderrTailBytes {
		trimmed = trimmed[len(trimmed)-stderrTailBytes:]
	}
	return trimmed
}

var _ Client = (*CLI)(nil)
