package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Chunking policy names accepted by CHUNK_POLICY.
const (
	PolicyWindow    = "window"
	PolicyParagraph = "paragraph"
)

// Embedding provider names accepted by EMBEDDING_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all configuration for the application.
type Config struct {
	// Ingestion
	PDFDir       string
	ManifestPath string
	ArtifactsDir string

	// Chunking
	ChunkPolicy      string
	ChunkSize        int
	ChunkOverlap     int
	MaxCharsPerChunk int

	// Embeddings
	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModelName string
	EmbeddingSize      int

	// LLM (answer generation)
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string

	// Vector store
	QdrantHost       string
	QdrantPort       int
	QdrantCollection string

	// Server
	APIPort   string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	// Try to find project root by looking for .env
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		PDFDir:             getEnv("PDF_DIR", "./data/pdfs"),
		ManifestPath:       getEnv("MANIFEST_PATH", ""),
		ArtifactsDir:       getEnv("ARTIFACTS_DIR", "./data/artifacts"),
		ChunkPolicy:        getEnv("CHUNK_POLICY", PolicyWindow),
		EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", ProviderOpenAI),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		QdrantHost:         getEnv("QDRANT_HOST", "localhost"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "rag-chunks"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.ChunkPolicy != PolicyWindow && cfg.ChunkPolicy != PolicyParagraph {
		return nil, fmt.Errorf("CHUNK_POLICY must be %q or %q, got %q", PolicyWindow, PolicyParagraph, cfg.ChunkPolicy)
	}
	if cfg.EmbeddingProvider != ProviderOpenAI && cfg.EmbeddingProvider != ProviderOllama {
		return nil, fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderOllama, cfg.EmbeddingProvider)
	}

	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 600)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 150)
	if err != nil {
		return nil, err
	}
	cfg.MaxCharsPerChunk, err = getEnvInt("MAX_CHARS_PER_CHUNK", 800)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", cfg.ChunkOverlap)
	}
	if cfg.MaxCharsPerChunk <= 0 {
		return nil, fmt.Errorf("MAX_CHARS_PER_CHUNK must be greater than 0")
	}

	cfg.QdrantPort, err = getEnvInt("QDRANT_PORT", 6334)
	if err != nil {
		return nil, err
	}

	// EMBEDDING_SIZE must match the output vector size of the embeddings model.
	// If the size changes, the Qdrant collection must be rebuilt.
	sizeStr := getEnv("EMBEDDING_SIZE", "")
	if sizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_SIZE is required")
	}
	cfg.EmbeddingSize, err = strconv.Atoi(sizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be a valid integer: %w", err)
	}
	if cfg.EmbeddingSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_SIZE must be greater than 0")
	}

	return cfg, nil
}

// SlogLevel maps the LOG_LEVEL string onto a slog.Level.
// Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// PagesPath returns the location of the page-level JSON artifact.
func (c *Config) PagesPath() string {
	return filepath.Join(c.ArtifactsDir, "pages.json")
}

// ChunksPath returns the location of the chunk-level JSON artifact.
func (c *Config) ChunksPath() string {
	return filepath.Join(c.ArtifactsDir, "chunks.json")
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
