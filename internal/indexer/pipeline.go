package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"pdfrag/internal/contextutil"
	"pdfrag/internal/llm"
	"pdfrag/internal/storage"
	"pdfrag/internal/vectorstore"
)

// PageSource produces page records from a document corpus.
type PageSource interface {
	ExtractPages(ctx context.Context) ([]storage.PageRecord, error)
}

// Pipeline orchestrates extraction, chunking, and index building. Each
// stage reads its input from the artifact repositories, so stages can
// be re-run independently.
type Pipeline struct {
	source      PageSource
	pageRepo    storage.PageStore
	chunkRepo   storage.ChunkStore
	chunker     Chunker
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	vectorSize  int
	logger      *slog.Logger
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	source PageSource,
	pageRepo storage.PageStore,
	chunkRepo storage.ChunkStore,
	chunker Chunker,
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	vectorSize int,
) *Pipeline {
	return &Pipeline{
		source:      source,
		pageRepo:    pageRepo,
		chunkRepo:   chunkRepo,
		chunker:     chunker,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		vectorSize:  vectorSize,
		logger:      slog.Default(),
	}
}

// getLogger extracts logger from context or returns default logger.
func (p *Pipeline) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return p.logger
}

// ExtractAll extracts page records from the corpus and saves them to
// the page artifact.
func (p *Pipeline) ExtractAll(ctx context.Context) ([]storage.PageRecord, error) {
	logger := p.getLogger(ctx)

	pages, err := p.source.ExtractPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract pages: %w", err)
	}

	if err := p.pageRepo.Save(ctx, pages); err != nil {
		return nil, fmt.Errorf("failed to save pages: %w", err)
	}

	logger.InfoContext(ctx, "extracted pages", "pages", len(pages))
	return pages, nil
}

// ChunkAll chunks the saved pages and saves the resulting chunks.
// Chunk ids are assigned globally across all pages in page order and
// are never reset.
func (p *Pipeline) ChunkAll(ctx context.Context) ([]storage.ChunkRecord, error) {
	logger := p.getLogger(ctx)

	pages, err := p.pageRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	chunks := make([]storage.ChunkRecord, 0, len(pages))
	nextID := 0
	for _, page := range pages {
		var pageChunks []storage.ChunkRecord
		pageChunks, nextID = p.chunker.ChunkPage(page, nextID)
		chunks = append(chunks, pageChunks...)
	}

	if err := p.chunkRepo.Save(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to save chunks: %w", err)
	}

	logger.InfoContext(ctx, "chunked pages", "pages", len(pages), "chunks", len(chunks))
	return chunks, nil
}

// BuildIndex filters the saved chunks, embeds the kept ones, and
// replaces the vector collection with the new index. A run that keeps
// zero chunks still replaces the collection with an empty index.
func (p *Pipeline) BuildIndex(ctx context.Context) (*IngestStats, error) {
	logger := p.getLogger(ctx)

	chunks, err := p.chunkRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	kept := make([]storage.ChunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		if IsNoise(chunk.Text) {
			continue
		}
		kept = append(kept, chunk)
	}

	stats := &IngestStats{
		ChunksTotal:   len(chunks),
		ChunksKept:    len(kept),
		ChunksDropped: len(chunks) - len(kept),
		ChunksPerDoc:  make(map[string]int),
	}
	for _, chunk := range kept {
		stats.ChunksPerDoc[chunk.DocID]++
	}
	stats.CharStats = computeCharStats(kept)

	var points []vectorstore.Point
	if len(kept) == 0 {
		logger.WarnContext(ctx, "no content chunks to index", "chunks_total", len(chunks))
	} else {
		texts := make([]string, len(kept))
		for i, chunk := range kept {
			texts[i] = chunk.Text
		}

		embeddings, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(embeddings) != len(kept) {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(kept), len(embeddings))
		}

		points = make([]vectorstore.Point, len(kept))
		for i, chunk := range kept {
			points[i] = vectorstore.Point{
				ID:   uint64(chunk.ChunkID),
				Text: chunk.Text,
				Vec:  embeddings[i],
				Meta: map[string]any{
					"doc_id":   chunk.DocID,
					"title":    chunk.Title,
					"source":   chunk.Source,
					"page":     chunk.Page,
					"chunk_id": chunk.ChunkID,
				},
			}
		}
	}

	if err := p.vectorStore.Replace(ctx, p.collection, p.vectorSize, points); err != nil {
		return nil, fmt.Errorf("failed to replace index: %w", err)
	}

	logger.InfoContext(ctx, "index built",
		"collection", p.collection,
		"chunks_total", stats.ChunksTotal,
		"chunks_kept", stats.ChunksKept,
		"chunks_dropped", stats.ChunksDropped,
	)
	return stats, nil
}

// Run executes the full pipeline. With skipExtract, the extraction
// stage is skipped and chunking starts from the existing page artifact.
func (p *Pipeline) Run(ctx context.Context, skipExtract bool) (*IngestStats, error) {
	var pagesRead int
	if skipExtract {
		pages, err := p.pageRepo.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load pages: %w", err)
		}
		pagesRead = len(pages)
	} else {
		pages, err := p.ExtractAll(ctx)
		if err != nil {
			return nil, err
		}
		pagesRead = len(pages)
	}

	if _, err := p.ChunkAll(ctx); err != nil {
		return nil, err
	}

	stats, err := p.BuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	stats.PagesRead = pagesRead
	return stats, nil
}
