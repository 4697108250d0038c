package library

import (
	"strings"
	"unicode"
)

// Normalize reduces a title or filename stem to a comparison key:
// lowercase with every non-alphanumeric rune removed. Two spellings of
// the same track ("Song (feat. X)" vs "song feat x") collapse to the
// same key.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeFilename removes characters that are invalid in filenames.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', ':', '\'', '*', '/', '?', '\\', '<', '>', '|':
			return -1
		}
		return r
	}, name)
}

// ExpectedFilename builds the canonical filename for a track:
// "Artist1, Artist2 - Title.mp3" with invalid characters removed.
func ExpectedFilename(artists []string, title string) string {
	stem := strings.Join(artists, ", ") + " - " + title
	return SanitizeFilename(stem) + ".mp3"
}
