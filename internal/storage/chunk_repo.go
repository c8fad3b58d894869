package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks pdfrag/internal/storage ChunkStore

import (
	"context"
)

// ChunkStore defines the interface for chunk artifact storage.
type ChunkStore interface {
	// Save writes the full chunk set, replacing any previous artifact.
	Save(ctx context.Context, chunks []ChunkRecord) error
	// Load reads the full chunk set. Returns ErrNotFound if the artifact is absent.
	Load(ctx context.Context) ([]ChunkRecord, error)
}

// ChunkRepo persists chunks as a JSON array on disk.
// It implements the ChunkStore interface. Chunks are written wholesale
// per ingestion run; there is no partial update.
type ChunkRepo struct {
	path string
}

// NewChunkRepo creates a new ChunkRepo writing to the given path.
func NewChunkRepo(path string) *ChunkRepo {
	return &ChunkRepo{path: path}
}

// Save writes the full chunk set, replacing any previous artifact.
func (r *ChunkRepo) Save(ctx context.Context, chunks []ChunkRecord) error {
	return writeJSONArray(r.path, chunks)
}

// Load reads the full chunk set. Returns ErrNotFound if the artifact is absent.
func (r *ChunkRepo) Load(ctx context.Context) ([]ChunkRecord, error) {
	var chunks []ChunkRecord
	if err := readJSONArray(r.path, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}
