package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks pdfrag/internal/rag Engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pdfrag/internal/contextutil"
	"pdfrag/internal/llm"
	"pdfrag/internal/vectorstore"
)

const (
	// DefaultK is the number of chunks retrieved when the caller does
	// not ask for a specific count.
	DefaultK = 5
	// MaxK caps the retrieval depth of a single query.
	MaxK = 20

	// NoContextAnswer is returned verbatim when retrieval finds
	// nothing; the LLM is not consulted in that case.
	NoContextAnswer = "No relevant context found in the knowledge base."
)

const systemPrompt = "You are a study assistant answering questions about a library of PDF documents. " +
	"Answer using only the information in the context below. If the context does not contain " +
	"enough information to answer, say so plainly. Cite the doc_id and page of the chunks you rely on."

// Engine provides RAG (Retrieval-Augmented Generation) functionality
// over the chunk index.
type Engine interface {
	// Retrieve returns the k nearest chunks for a question, ascending
	// by distance, optionally scoped to one document.
	Retrieve(ctx context.Context, question string, k int, docID string) ([]Source, error)
	// Ask answers a question by retrieving relevant chunks and generating an answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// AskStream behaves like Ask but delivers the answer incrementally
	// through onDelta before returning the assembled response.
	AskStream(ctx context.Context, req AskRequest, onDelta func(chunk string) error) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	llmClient   *llm.Client
	logger      *slog.Logger
}

// NewEngine creates a new RAG engine.
func NewEngine(
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	llmClient *llm.Client,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		llmClient:   llmClient,
		logger:      slog.Default(),
	}
}

// getLogger extracts logger from context or returns default logger.
func (e *ragEngine) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return e.logger
}

// Retrieve embeds the question and queries the vector store. Results
// come back in the store's order, ascending distance, at most k of
// them. A missing collection surfaces as vectorstore.ErrCollectionNotFound.
func (e *ragEngine) Retrieve(ctx context.Context, question string, k int, docID string) ([]Source, error) {
	logger := e.getLogger(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{
			Field:   "question",
			Message: "question cannot be empty",
		}
	}

	k = clampK(k)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to embed question", "error", err)
		return nil, WrapError(err, "failed to embed question")
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for question")
	}

	var filter *vectorstore.Filter
	if docID != "" {
		filter = &vectorstore.Filter{Field: "doc_id", Value: docID}
	}

	results, err := e.vectorStore.Query(ctx, e.collection, embeddings[0], k, filter)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to query vector store", "error", err)
		return nil, WrapError(err, "failed to query vector store")
	}

	sources := make([]Source, 0, len(results))
	for _, result := range results {
		sources = append(sources, sourceFromResult(result))
	}

	logger.InfoContext(ctx, "Retrieval completed",
		"results", len(sources),
		"k", k,
		"doc_id", docID)

	return sources, nil
}

// Ask answers a question using RAG.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := e.getLogger(ctx)

	logger.InfoContext(ctx, "RAG query started",
		"question", req.Question,
		"k", req.K,
		"doc_id", req.DocID)

	sources, err := e.Retrieve(ctx, req.Question, req.K, req.DocID)
	if err != nil {
		return AskResponse{}, err
	}

	if len(sources) == 0 {
		logger.InfoContext(ctx, "No relevant chunks retrieved")
		return AskResponse{Answer: NoContextAnswer, Sources: []Source{}}, nil
	}

	answer, err := e.llmClient.Chat(ctx, buildMessages(req.Question, sources), llm.ChatParams{
		Temperature: 0.2,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get LLM response", "error", err)
		return AskResponse{}, WrapError(err, "failed to get LLM response")
	}

	logger.InfoContext(ctx, "RAG query completed",
		"chunks_used", len(sources),
		"answer_length", len(answer))

	return AskResponse{Answer: answer, Sources: sources}, nil
}

// AskStream answers a question like Ask but streams the answer through
// onDelta as it is generated. The no-context fallback is delivered as a
// single delta.
func (e *ragEngine) AskStream(ctx context.Context, req AskRequest, onDelta func(chunk string) error) (AskResponse, error) {
	logger := e.getLogger(ctx)

	sources, err := e.Retrieve(ctx, req.Question, req.K, req.DocID)
	if err != nil {
		return AskResponse{}, err
	}

	if len(sources) == 0 {
		logger.InfoContext(ctx, "No relevant chunks retrieved")
		if err := onDelta(NoContextAnswer); err != nil {
			return AskResponse{}, err
		}
		return AskResponse{Answer: NoContextAnswer, Sources: []Source{}}, nil
	}

	var answer strings.Builder
	err = e.llmClient.StreamChat(ctx, buildMessages(req.Question, sources), llm.ChatParams{
		Temperature: 0.2,
	}, func(chunk string) error {
		answer.WriteString(chunk)
		return onDelta(chunk)
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to stream LLM response", "error", err)
		return AskResponse{}, WrapError(err, "failed to get LLM response")
	}

	return AskResponse{Answer: answer.String(), Sources: sources}, nil
}

// clampK applies the default and the cap to a requested chunk count.
func clampK(k int) int {
	if k <= 0 {
		return DefaultK
	}
	if k > MaxK {
		return MaxK
	}
	return k
}

// buildMessages assembles the chat messages for answer generation. The
// context block labels every chunk with its provenance so the model can
// cite doc_id and page.
func buildMessages(question string, sources []Source) []llm.Message {
	blocks := make([]string, 0, len(sources))
	for i, src := range sources {
		blocks = append(blocks, fmt.Sprintf("[Chunk %d | doc_id %s | page %d | chunk_id %d]\n%s",
			i+1, src.DocID, src.Page, src.ChunkID, src.Text))
	}

	userMessage := fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s",
		strings.Join(blocks, "\n\n"), question)

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}
}

// sourceFromResult maps a store hit onto a Source, pulling the chunk
// provenance out of the payload metadata.
func sourceFromResult(result vectorstore.QueryResult) Source {
	return Source{
		DocID:    metaString(result.Meta, "doc_id"),
		Title:    metaString(result.Meta, "title"),
		Page:     metaInt(result.Meta, "page"),
		ChunkID:  metaInt(result.Meta, "chunk_id"),
		Text:     result.Text,
		Distance: result.Distance,
	}
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// metaInt reads an integer metadata value regardless of how the store
// decoded it. Qdrant payloads come back as int64, JSON round-trips as
// float64 and the in-memory store keeps plain ints.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
