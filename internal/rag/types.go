package rag

// AskRequest represents a RAG query request.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally specifies how many chunks to retrieve. Zero means DefaultK.
	K int `json:"top_k,omitempty"`
	// DocID optionally restricts retrieval to a single document.
	DocID string `json:"doc_id,omitempty"`
}

// Source is one retrieved chunk backing an answer, carried through to
// the caller for citation display.
type Source struct {
	// DocID identifies the source document.
	DocID string `json:"doc_id"`
	// Title is the document's display title.
	Title string `json:"title"`
	// Page is the 1-based PDF page the chunk came from.
	Page int `json:"page"`
	// ChunkID is the stable chunk identifier.
	ChunkID int `json:"chunk_id"`
	// Text is the chunk text as stored in the index.
	Text string `json:"text"`
	// Distance is the cosine distance from the question embedding, lower is closer.
	Distance float32 `json:"distance"`
}

// AskResponse represents the response from a RAG query.
type AskResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// Sources are the chunks that were handed to the LLM as context,
	// in ascending distance order. Empty when nothing relevant was found.
	Sources []Source `json:"sources"`
}
