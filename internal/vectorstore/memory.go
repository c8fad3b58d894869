package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory VectorStore for tests and local runs
// without a Qdrant instance. Vectors are assumed unit-normalized, so
// cosine similarity reduces to a dot product.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Point
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Point),
	}
}

// Replace swaps the collection contents for the given points.
func (s *MemoryStore) Replace(ctx context.Context, collection string, vectorSize int, points []Point) error {
	for i, point := range points {
		if len(point.Vec) != vectorSize {
			return fmt.Errorf("point %d has vector size %d, expected %d", i, len(point.Vec), vectorSize)
		}
	}

	stored := make([]Point, len(points))
	copy(stored, points)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = stored
	return nil
}

// Query returns the k nearest points by cosine distance.
func (s *MemoryStore) Query(ctx context.Context, collection string, vector []float32, k int, filter *Filter) ([]QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	results := make([]QueryResult, 0, len(points))
	for _, point := range points {
		if filter != nil {
			val, ok := point.Meta[filter.Field].(string)
			if !ok || val != filter.Value {
				continue
			}
		}

		var dot float64
		for i := range vector {
			if i < len(point.Vec) {
				dot += float64(vector[i]) * float64(point.Vec[i])
			}
		}

		meta := make(map[string]any, len(point.Meta))
		for key, value := range point.Meta {
			meta[key] = value
		}

		results = append(results, QueryResult{
			Text:     point.Text,
			Meta:     meta,
			Distance: float32(1 - dot),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Exists reports whether the collection has been built.
func (s *MemoryStore) Exists(ctx context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.collections[collection]
	return ok, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
