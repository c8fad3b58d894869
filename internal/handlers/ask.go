package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pdfrag/internal/contextutil"
	"pdfrag/internal/rag"
	"pdfrag/internal/vectorstore"
)

// AskHandler handles HTTP requests for RAG queries.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for RAG queries.
// This mirrors the rag.AskRequest but is defined here for HTTP layer separation.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	DocID    string `json:"doc_id,omitempty"`
}

// SourceResponse represents one cited chunk in the HTTP response.
//
// swagger:model SourceResponse
type SourceResponse struct {
	// Document the chunk came from
	DocID string `json:"doc_id"`

	// Display title of the document
	Title string `json:"title"`

	// 1-based PDF page number
	Page int `json:"page"`

	// Stable chunk identifier
	ChunkID int `json:"chunk_id"`

	// Chunk text as stored in the index
	Text string `json:"text"`

	// Cosine distance from the question embedding, lower is closer
	Distance float32 `json:"distance"`
}

// AskResponse represents the HTTP response payload for RAG queries.
// This mirrors the rag.AskResponse but is defined here for HTTP layer separation.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`

	// Chunks handed to the LLM as context, in ascending distance order
	Sources []SourceResponse `json:"sources"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// sourcesEvent is the final SSE frame of a streamed answer, sent after
// the answer deltas and before the [DONE] terminator.
type sourcesEvent struct {
	Sources []SourceResponse `json:"sources"`
}

// ServeHTTP handles HTTP requests for RAG queries.
//
// Ask a question about the indexed PDF library. The system retrieves
// the most relevant chunks, optionally scoped to one document, and
// generates an answer grounded in them. With ?stream=true the answer
// is delivered as Server-Sent Events.
//
// swagger:route POST /ask askQuestion
//
// # Ask a question using RAG
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Answer with cited sources
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Malformed request body
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'422':
//	  description: Missing or empty question
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding or LLM service error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Knowledge base unavailable or not indexed
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		h.writeError(w, http.StatusUnprocessableEntity, "Question is required")
		return
	}

	// Check if streaming is requested
	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingAsk(w, r, ctx, req)
		return
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question: req.Question,
		K:        req.TopK,
		DocID:    req.DocID,
	})
	if err != nil {
		h.handleRAGError(w, ctx, err, "Failed to process question")
		return
	}

	resp := AskResponse{
		Answer:  ragResp.Answer,
		Sources: sourceResponses(ragResp.Sources),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleStreamingAsk answers over Server-Sent Events. Answer deltas go
// out as plain data frames as the model produces them, followed by one
// JSON frame carrying the cited sources and the [DONE] terminator.
func (h *AskHandler) handleStreamingAsk(w http.ResponseWriter, r *http.Request, ctx context.Context, req AskRequest) {
	logger := contextutil.LoggerFromContext(ctx)

	// Set up Server-Sent Events headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		h.writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	ragResp, err := h.ragEngine.AskStream(ctx, rag.AskRequest{
		Question: req.Question,
		K:        req.TopK,
		DocID:    req.DocID,
	}, func(chunk string) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "error streaming answer", "error", err)
		// Headers are already sent, so the error goes out as an SSE frame
		_, _ = fmt.Fprintf(w, "data: {\"error\":\"%s\"}\n\n", err.Error())
		flusher.Flush()
		return
	}

	if payload, err := json.Marshal(sourcesEvent{Sources: sourceResponses(ragResp.Sources)}); err == nil {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", payload)
	}
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// sourceResponses maps engine sources onto their HTTP representation.
func sourceResponses(sources []rag.Source) []SourceResponse {
	out := make([]SourceResponse, len(sources))
	for i, src := range sources {
		out[i] = SourceResponse{
			DocID:    src.DocID,
			Title:    src.Title,
			Page:     src.Page,
			ChunkID:  src.ChunkID,
			Text:     src.Text,
			Distance: src.Distance,
		}
	}
	return out
}

// handleRAGError maps RAG engine errors to appropriate HTTP status codes.
func (h *AskHandler) handleRAGError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "RAG engine error", "error", err)

	if err == nil {
		h.writeError(w, http.StatusInternalServerError, defaultMsg)
		return
	}

	var validationErr *rag.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	// An absent collection means nothing has been ingested yet
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		h.writeError(w, http.StatusServiceUnavailable, "Knowledge base is not indexed yet")
		return
	}

	errMsg := strings.ToLower(err.Error())

	// Vector store errors -> 503
	if strings.Contains(errMsg, "vector store") ||
		strings.Contains(errMsg, "qdrant") {
		h.writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	// LLM/embedding errors -> 502
	if strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "llm") {
		h.writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	h.writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func (h *AskHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
