// Package ytdlp wraps the yt-dlp command-line downloader.
//
// The CLI client extracts audio from a URL as mp3 and reports the final file
// path printed by yt-dlp after post-processing. The command constructor is
// injectable so tests can substitute a helper process.
package ytdlp
