package indexer

import (
	"fmt"
	"strings"
	"unicode"

	"pdfrag/internal/storage"
)

const (
	// DefaultChunkSize is the window width in runes (targets ~450
	// tokens for a 512-token embedding model).
	DefaultChunkSize = 600

	// DefaultOverlap is the window overlap in runes.
	DefaultOverlap = 150

	// DefaultMaxCharsPerChunk is the paragraph aggregation limit in runes.
	DefaultMaxCharsPerChunk = 800
)

// Chunking policies accepted by NewChunker.
const (
	PolicyWindow    = "window"
	PolicyParagraph = "paragraph"
)

// NewChunker creates the chunker for the given policy name.
func NewChunker(policy string, chunkSize, overlap, maxChars int) (Chunker, error) {
	switch policy {
	case PolicyWindow:
		return NewWindowChunker(chunkSize, overlap), nil
	case PolicyParagraph:
		return NewParagraphChunker(maxChars), nil
	default:
		return nil, fmt.Errorf("unknown chunk policy: %q", policy)
	}
}

// WindowChunker splits page text into fixed-size overlapping windows.
//
// Window boundaries slide by chunkSize-overlap runes. When a window
// would open mid-word, its start is advanced past the current word so
// chunks begin on a word boundary; the chunk upstream of the overlap
// still carries that word in full.
type WindowChunker struct {
	chunkSize int
	overlap   int
}

// NewWindowChunker creates a window chunker. Out-of-range parameters
// fall back to usable values so the step stays positive.
func NewWindowChunker(chunkSize, overlap int) *WindowChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &WindowChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// ChunkPage splits the page text into overlapping windows. Offsets are
// rune offsets into the trimmed page text, and slicing the page text
// with them recovers the untrimmed window of each chunk.
func (c *WindowChunker) ChunkPage(page storage.PageRecord, nextID int) ([]storage.ChunkRecord, int) {
	text := []rune(strings.TrimSpace(page.Text))
	n := len(text)

	var records []storage.ChunkRecord
	step := c.chunkSize - c.overlap

	for start := 0; start < n; start += step {
		end := start + c.chunkSize
		charEnd := end
		if charEnd > n {
			charEnd = n
		}

		chunkStart := start
		if chunkStart != 0 {
			for chunkStart < charEnd && isWordRune(text[chunkStart]) {
				chunkStart++
			}
		}

		trimmed := strings.TrimSpace(string(text[chunkStart:charEnd]))
		if trimmed == "" {
			continue
		}

		records = append(records, storage.ChunkRecord{
			DocID:     page.DocID,
			Title:     page.Title,
			ChunkID:   nextID,
			Source:    page.Source,
			Page:      page.Page,
			Text:      trimmed,
			CharStart: chunkStart,
			CharEnd:   charEnd,
		})
		nextID++
	}

	return records, nextID
}

// isWordRune reports whether r is part of a word (letter or number).
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
