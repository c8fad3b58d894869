package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks pdfrag/internal/vectorstore VectorStore

import (
	"context"
	"errors"
)

// ErrCollectionNotFound is returned by Query when the target collection
// has not been built yet.
var ErrCollectionNotFound = errors.New("collection not found")

// Point represents a vector point with its chunk text and metadata.
type Point struct {
	ID   uint64
	Text string
	Vec  []float32
	Meta map[string]any
}

// QueryResult represents a single retrieval hit. Distance is cosine
// distance (1 - cosine similarity), so lower means more similar.
type QueryResult struct {
	Text     string
	Meta     map[string]any
	Distance float32
}

// Filter restricts a query to points whose metadata field matches the
// given value exactly.
type Filter struct {
	Field string
	Value string
}

// VectorStore defines the interface for vector index operations.
type VectorStore interface {
	// Replace atomically replaces the contents of the collection with
	// the given points. Readers never observe a partially built index.
	Replace(ctx context.Context, collection string, vectorSize int, points []Point) error

	// Query returns the k nearest points to the query vector, ordered
	// by ascending distance. Returns ErrCollectionNotFound if the
	// collection does not exist.
	Query(ctx context.Context, collection string, vector []float32, k int, filter *Filter) ([]QueryResult, error)

	// Exists reports whether the collection is available for queries.
	Exists(ctx context.Context, collection string) (bool, error)

	// Close releases the underlying connection.
	Close() error
}
