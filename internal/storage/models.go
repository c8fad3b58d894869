package storage

// PageRecord is one page of extracted PDF text.
// Produced once per page by the extractor and immutable afterward.
type PageRecord struct {
	DocID     string `json:"doc_id"`
	Title     string `json:"title"`
	Page      int    `json:"page"` // 1-based physical page number
	Source    string `json:"source"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
}

// ChunkRecord is one retrievable unit cut from a page.
// ChunkID is globally unique and strictly increasing across all pages
// and documents of an ingestion run; it is never reset per page or per
// document. CharStart/CharEnd locate the chunk in the page text, with
// 0 <= CharStart < CharEnd <= len(page text).
type ChunkRecord struct {
	DocID     string `json:"doc_id"`
	Title     string `json:"title"`
	ChunkID   int    `json:"chunk_id"`
	Source    string `json:"source"`
	Page      int    `json:"page"`
	Text      string `json:"text"`
	CharStart int    `json:"char_start"`
	CharEnd   int    `json:"char_end"`
}
