package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks pdfrag/internal/llm Embedder

import (
	"context"
	"fmt"
	"math"
)

// Embedder maps texts to fixed-size unit-normalized vectors.
// Implementations must preserve input order and return exactly one
// vector per input text, so index builds and queries share the same
// embedding space.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder selects an embedding backend by provider name,
// "openai" for any OpenAI-compatible HTTP endpoint or "ollama" for a
// local Ollama daemon.
func NewEmbedder(provider, baseURL, apiKey, model string, expectedSize int) (Embedder, error) {
	switch provider {
	case "openai":
		return NewEmbeddingsClient(baseURL, apiKey, model, expectedSize), nil
	case "ollama":
		return NewOllamaEmbedder(baseURL, model, expectedSize)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// normalizeVector scales vec to unit length in place.
// Zero vectors are left untouched.
func normalizeVector(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
