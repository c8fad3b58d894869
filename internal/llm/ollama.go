package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder generates embeddings through a local Ollama daemon.
// Ollama's embeddings endpoint accepts one prompt per call, so batches
// are embedded sequentially.
type OllamaEmbedder struct {
	client       *api.Client
	model        string
	expectedSize int
}

// NewOllamaEmbedder creates an embedder backed by the Ollama API at
// baseURL (for example http://localhost:11434).
func NewOllamaEmbedder(baseURL, model string, expectedSize int) (*OllamaEmbedder, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}

	return &OllamaEmbedder{
		client:       api.NewClient(parsed, http.DefaultClient),
		model:        model,
		expectedSize: expectedSize,
	}, nil
}

// EmbedTexts generates embeddings for the given texts, one request per
// text. Returns unit-normalized float32 vectors in input order.
func (e *OllamaEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		resp, err := e.client.Embeddings(ctx, &api.EmbeddingRequest{
			Model:  e.model,
			Prompt: text,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}

		if len(resp.Embedding) != e.expectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(resp.Embedding), e.expectedSize)
		}

		vec := make([]float32, len(resp.Embedding))
		for j, v := range resp.Embedding {
			vec[j] = float32(v)
		}
		normalizeVector(vec)
		result[i] = vec
	}

	return result, nil
}
