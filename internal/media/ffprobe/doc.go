// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no audioscribe-specific dependencies and could be
// extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Failures are classified so callers can name the cause: ErrExit for a
// non-zero ffprobe exit, ErrDecode for output that is not valid JSON.
package ffprobe
