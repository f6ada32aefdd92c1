// Package ingest implements the pipeline stages that turn a queued job into
// verified audio files: downloading each URL with yt-dlp and verifying the
// resulting files with ffprobe-backed quality checks.
package ingest
