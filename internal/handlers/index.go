package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"pdfrag/internal/contextutil"
	"pdfrag/internal/indexer"
)

// IndexHandler handles HTTP requests for triggering re-ingestion.
type IndexHandler struct {
	pipeline *indexer.Pipeline
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(pipeline *indexer.Pipeline) *IndexHandler {
	return &IndexHandler{pipeline: pipeline}
}

// IndexResponse represents the response from the index endpoint.
//
// swagger:model IndexResponse
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for triggering re-ingestion.
//
// Re-runs the full ingestion pipeline: extract pages from the PDF
// corpus, chunk them, and replace the vector index. With
// ?skip_extract=true the existing pages artifact is reused and only
// chunking and index building run.
//
// swagger:route POST /index reindex
//
// # Rebuild the chunk index
//
// ---
// produces:
// - application/json
// responses:
//
//	'202':
//	  description: Ingestion started in the background
//	  schema:
//	    "$ref": "#/definitions/IndexResponse"
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	skipExtract := r.URL.Query().Get("skip_extract") == "true"
	logger.InfoContext(ctx, "re-ingestion triggered via API", "skip_extract", skipExtract)

	// Run the pipeline in a goroutine so it doesn't block the HTTP
	// response. A background context keeps ingestion alive after the
	// request completes; readers see the old index until the alias
	// swap at the end of the run.
	go func() {
		indexCtx := contextutil.ContextWithLogger(context.Background(), logger)
		stats, err := h.pipeline.Run(indexCtx, skipExtract)
		if err != nil {
			logger.ErrorContext(indexCtx, "re-ingestion failed", "error", err)
			return
		}
		logger.InfoContext(indexCtx, "re-ingestion completed",
			"pages_read", stats.PagesRead,
			"chunks_total", stats.ChunksTotal,
			"chunks_kept", stats.ChunksKept,
			"chunks_dropped", stats.ChunksDropped)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(IndexResponse{
		Message: "Ingestion started. Check server logs for progress.",
		Status:  "accepted",
	})
}

// writeError writes an error response.
func (h *IndexHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
