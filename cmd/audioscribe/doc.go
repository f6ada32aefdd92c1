// Command audioscribe downloads audio from URLs with yt-dlp, verifies the
// files with ffprobe-backed quality rules, and manages the resulting track
// catalog.
package main
