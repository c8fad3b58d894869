package indexer

import "pdfrag/internal/storage"

// Chunker splits one page of text into chunk records.
type Chunker interface {
	// ChunkPage chunks the page text, assigning ids starting at nextID.
	// Returns the chunks and the next unused id. Ids are only consumed
	// by emitted chunks.
	ChunkPage(page storage.PageRecord, nextID int) ([]storage.ChunkRecord, int)
}
