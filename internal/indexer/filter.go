package indexer

import (
	"strings"
	"unicode/utf8"
)

// referenceMarkers flag bibliography and citation apparatus.
var referenceMarkers = []string{"isbn", "issn", "doi", "urn:"}

const (
	// headerWindow is how many leading runes are scanned for a sources
	// heading.
	headerWindow = 50

	// minContentChars is the minimum trimmed rune count for a chunk to
	// count as content.
	minContentChars = 150
)

// IsNoise reports whether chunk text looks like boilerplate rather
// than content: citation markers anywhere, a sources heading near the
// start, two or more URLs, or too little text.
func IsNoise(text string) bool {
	t := strings.ToLower(text)

	for _, marker := range referenceMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}

	head := []rune(t)
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if strings.Contains(string(head), "sources") {
		return true
	}

	urls := strings.Count(t, "http://") + strings.Count(t, "https://") + strings.Count(t, "www.")
	if urls >= 2 {
		return true
	}

	return utf8.RuneCountInString(strings.TrimSpace(text)) < minContentChars
}
