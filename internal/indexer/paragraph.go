package indexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"pdfrag/internal/storage"
)

// ParagraphChunker splits page text on blank lines and greedily packs
// consecutive paragraphs into chunks of at most maxChars runes. A
// single paragraph longer than the budget is emitted whole.
//
// Chunk offsets span from the first to the last packed paragraph, so
// slicing the page text with them recovers the chunk text exactly,
// including the blank lines between packed paragraphs.
type ParagraphChunker struct {
	maxChars int
	splitter *regexp.Regexp
}

// NewParagraphChunker creates a paragraph chunker. A non-positive
// maxChars falls back to the default budget.
func NewParagraphChunker(maxChars int) *ParagraphChunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxCharsPerChunk
	}
	return &ParagraphChunker{
		maxChars: maxChars,
		splitter: regexp.MustCompile(`(?s)(.+?)(?:\n\s*\n|\z)`),
	}
}

// paragraphSpan is a half-open rune offset range into the page text.
type paragraphSpan struct {
	start int
	end   int
}

// paragraphs returns the spans of non-empty paragraphs, tightened to
// exclude surrounding whitespace.
func (c *ParagraphChunker) paragraphs(text string) []paragraphSpan {
	matches := c.splitter.FindAllStringSubmatchIndex(text, -1)

	spans := make([]paragraphSpan, 0, len(matches))
	for _, m := range matches {
		// m[2], m[3] bound the capture group in bytes.
		raw := text[m[2]:m[3]]

		left := strings.TrimLeftFunc(raw, unicode.IsSpace)
		if left == "" {
			continue
		}
		tight := strings.TrimRightFunc(left, unicode.IsSpace)

		startByte := m[2] + (len(raw) - len(left))
		endByte := startByte + len(tight)

		spans = append(spans, paragraphSpan{
			start: utf8.RuneCountInString(text[:startByte]),
			end:   utf8.RuneCountInString(text[:endByte]),
		})
	}

	return spans
}

// ChunkPage packs the page's paragraphs into chunks, assigning ids
// starting at nextID.
func (c *ParagraphChunker) ChunkPage(page storage.PageRecord, nextID int) ([]storage.ChunkRecord, int) {
	spans := c.paragraphs(page.Text)
	if len(spans) == 0 {
		return nil, nextID
	}

	merged := make([]paragraphSpan, 0, len(spans))
	cur := spans[0]
	for _, span := range spans[1:] {
		if span.end-cur.start > c.maxChars {
			merged = append(merged, cur)
			cur = span
		} else {
			cur.end = span.end
		}
	}
	merged = append(merged, cur)

	runes := []rune(page.Text)
	records := make([]storage.ChunkRecord, 0, len(merged))
	for _, span := range merged {
		records = append(records, storage.ChunkRecord{
			DocID:     page.DocID,
			Title:     page.Title,
			ChunkID:   nextID,
			Source:    page.Source,
			Page:      page.Page,
			Text:      string(runes[span.start:span.end]),
			CharStart: span.start,
			CharEnd:   span.end,
		})
		nextID++
	}

	return records, nextID
}
