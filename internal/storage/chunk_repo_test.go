package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChunkRepo_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chunks.json")
	repo := NewChunkRepo(path)

	chunks := []ChunkRecord{
		{DocID: "thesis", Title: "Thesis", ChunkID: 0, Source: "thesis.pdf", Page: 1, Text: "First chunk.", CharStart: 0, CharEnd: 12},
		{DocID: "thesis", Title: "Thesis", ChunkID: 1, Source: "thesis.pdf", Page: 1, Text: "Second chunk.", CharStart: 450, CharEnd: 600},
		{DocID: "notes", Title: "Notes", ChunkID: 2, Source: "notes.pdf", Page: 1, Text: "Other doc.", CharStart: 0, CharEnd: 10},
	}

	if err := repo.Save(ctx, chunks); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("Load() returned %d chunks, want %d", len(got), len(chunks))
	}
	for i := range chunks {
		if got[i] != chunks[i] {
			t.Errorf("Load()[%d] = %+v, want %+v", i, got[i], chunks[i])
		}
	}
}

func TestChunkRepo_LoadMissing(t *testing.T) {
	repo := NewChunkRepo(filepath.Join(t.TempDir(), "chunks.json"))

	_, err := repo.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_FieldNames(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chunks.json")
	repo := NewChunkRepo(path)

	chunks := []ChunkRecord{
		{DocID: "d1", Title: "T", ChunkID: 7, Source: "d1.pdf", Page: 2, Text: "body", CharStart: 10, CharEnd: 14},
	}
	if err := repo.Save(ctx, chunks); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	fields := []string{
		`"doc_id"`, `"title"`, `"chunk_id"`, `"source"`,
		`"page"`, `"text"`, `"char_start"`, `"char_end"`,
	}
	for _, field := range fields {
		if !strings.Contains(string(data), field) {
			t.Errorf("artifact missing field %s", field)
		}
	}
}
