package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_page_store.go -package=mocks pdfrag/internal/storage PageStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned when a required artifact is missing.
	ErrNotFound = errors.New("artifact not found")
)

// PageStore defines the interface for page artifact storage.
type PageStore interface {
	// Save writes the full page set, replacing any previous artifact.
	Save(ctx context.Context, pages []PageRecord) error
	// Load reads the full page set. Returns ErrNotFound if the artifact is absent.
	Load(ctx context.Context) ([]PageRecord, error)
}

// PageRepo persists pages as a JSON array on disk.
// It implements the PageStore interface.
type PageRepo struct {
	path string
}

// NewPageRepo creates a new PageRepo writing to the given path.
func NewPageRepo(path string) *PageRepo {
	return &PageRepo{path: path}
}

// Save writes the full page set, replacing any previous artifact.
// Parent directories are created as needed.
func (r *PageRepo) Save(ctx context.Context, pages []PageRecord) error {
	return writeJSONArray(r.path, pages)
}

// Load reads the full page set. Returns ErrNotFound if the artifact is absent.
func (r *PageRepo) Load(ctx context.Context) ([]PageRecord, error) {
	var pages []PageRecord
	if err := readJSONArray(r.path, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// writeJSONArray marshals v as indented JSON to path, creating directories as needed.
func writeJSONArray(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// readJSONArray unmarshals the JSON array at path into v.
// A missing file maps to ErrNotFound so callers can distinguish
// absent artifacts from corrupt ones.
func readJSONArray(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return nil
}
