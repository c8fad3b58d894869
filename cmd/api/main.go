package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"pdfrag/internal/config"
	"pdfrag/internal/extract"
	"pdfrag/internal/http"
	"pdfrag/internal/indexer"
	"pdfrag/internal/llm"
	"pdfrag/internal/rag"
	"pdfrag/internal/storage"
	"pdfrag/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API provides RAG (Retrieval-Augmented Generation) functionality for
// asking questions about an indexed library of PDF documents.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: PDF RAG API
//   description: |
//     RAG (Retrieval-Augmented Generation) API over a chunked PDF library.
//     Ask questions and get answers grounded in the indexed documents,
//     with per-chunk citations.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantHost, cfg.QdrantPort)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	// Validate embedding client vector size (fail-fast)
	embedder, err := llm.NewEmbedder(cfg.EmbeddingProvider, cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingSize)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingSize {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.EmbeddingSize)
	}
	slog.Info("Embedding client validated", "provider", cfg.EmbeddingProvider, "vector_size", cfg.EmbeddingSize)

	// Create LLM client (answer generation)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Some backends load models lazily, so a missing model is only a warning
	if ok, err := llmClient.HasModel(ctx, cfg.LLMModelName); err != nil {
		slog.Warn("Could not list models from LLM backend", "error", err)
	} else if !ok {
		slog.Warn("Configured model not advertised by LLM backend", "model", cfg.LLMModelName)
	}

	// Create RAG engine
	ragEngine := rag.NewEngine(embedder, vectorStore, cfg.QdrantCollection, llmClient)
	slog.Info("RAG engine initialized", "collection", cfg.QdrantCollection)

	// Ingestion pipeline backing the /index endpoint
	manifest, err := extract.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}
	chunker, err := indexer.NewChunker(cfg.ChunkPolicy, cfg.ChunkSize, cfg.ChunkOverlap, cfg.MaxCharsPerChunk)
	if err != nil {
		log.Fatalf("Failed to create chunker: %v", err)
	}
	pipeline := indexer.NewPipeline(
		extract.NewExtractor(cfg.PDFDir, manifest),
		storage.NewPageRepo(cfg.PagesPath()),
		storage.NewChunkRepo(cfg.ChunksPath()),
		chunker,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.EmbeddingSize,
	)

	// Create router with dependencies
	deps := &http.Deps{
		RAGEngine:   ragEngine,
		Pipeline:    pipeline,
		VectorStore: vectorStore,
		Embedder:    embedder,
		Collection:  cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server. Ingestion runs via the ingest command or a
	// POST to /index; an unindexed collection surfaces as 503 on /ask.
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
