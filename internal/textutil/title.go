package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveTitle produces a human-readable track title from a file path.
// Separators collapse to spaces, the extension and yt-dlp id suffix
// ("Title [abc123].mp3") are stripped, and words are title-cased.
func DeriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Unknown Track"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = stripIDSuffix(base)

	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Unknown Track"
	}
	return cases.Title(language.Und).String(title)
}

func stripIDSuffix(base string) string {
	trimmed := strings.TrimSpace(base)
	if !strings.HasSuffix(trimmed, "]") {
		return trimmed
	}
	open := strings.LastIndex(trimmed, "[")
	if open <= 0 {
		return trimmed
	}
	return strings.TrimSpace(trimmed[:open])
}
