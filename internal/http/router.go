package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pdfrag/internal/handlers"
	"pdfrag/internal/indexer"
	"pdfrag/internal/llm"
	"pdfrag/internal/rag"
	"pdfrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine   rag.Engine
	Pipeline    *indexer.Pipeline
	VectorStore vectorstore.VectorStore
	Embedder    llm.Embedder
	Collection  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	indexHandler := handlers.NewIndexHandler(deps.Pipeline)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Embedder, deps.Collection)

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Method(http.MethodPost, "/ask", askHandler)
	r.Method(http.MethodPost, "/index", indexHandler)

	return r
}
