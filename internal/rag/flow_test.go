package rag

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"pdfrag/internal/indexer"
	"pdfrag/internal/storage"
	"pdfrag/internal/vectorstore"
)

// fixedPages serves a fixed corpus to the ingestion pipeline.
type fixedPages []storage.PageRecord

func (p fixedPages) ExtractPages(ctx context.Context) ([]storage.PageRecord, error) {
	return p, nil
}

// keywordEmbedder maps texts onto axis-aligned unit vectors by topic
// keyword, so distances in the flow tests are exact.
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "degree"):
			vecs[i] = []float32{1, 0, 0}
		case strings.Contains(lower, "thesis"):
			vecs[i] = []float32{0, 1, 0}
		default:
			vecs[i] = []float32{0, 0, 1}
		}
	}
	return vecs, nil
}

// ingestFixture runs the whole pipeline over a two-document corpus and
// returns an engine reading from the resulting index.
//
// The guide's cover page is too short to survive the noise filter, so
// its chunk id 0 is assigned but never indexed; the guide's content
// page and the handbook page index as chunk ids 1 and 2.
func ingestFixture(t *testing.T) (Engine, string, string) {
	t.Helper()

	guideText := strings.TrimSpace(strings.Repeat(
		"The degree programme combines contact teaching with independent study. ", 13))
	handbookText := strings.TrimSpace(strings.Repeat(
		"The thesis process starts with a supervisor meeting. ", 5))

	pages := fixedPages{
		{DocID: "guide", Title: "Study Guide", Source: "guide.pdf", Page: 1,
			Text: "Publication cover", CharCount: len("Publication cover")},
		{DocID: "guide", Title: "Study Guide", Source: "guide.pdf", Page: 2,
			Text: guideText, CharCount: len(guideText)},
		{DocID: "handbook", Title: "Thesis Handbook", Source: "handbook.pdf", Page: 4,
			Text: handbookText, CharCount: len(handbookText)},
	}

	chunker, err := indexer.NewChunker("paragraph", 600, 150, 800)
	if err != nil {
		t.Fatalf("NewChunker() error = %v", err)
	}

	dir := t.TempDir()
	store := vectorstore.NewMemoryStore()
	pipeline := indexer.NewPipeline(
		pages,
		storage.NewPageRepo(filepath.Join(dir, "pages.json")),
		storage.NewChunkRepo(filepath.Join(dir, "chunks.json")),
		chunker,
		keywordEmbedder{},
		store,
		"kb",
		3,
	)

	stats, err := pipeline.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.ChunksTotal != 3 || stats.ChunksKept != 2 || stats.ChunksDropped != 1 {
		t.Fatalf("stats = total %d kept %d dropped %d, want 3/2/1",
			stats.ChunksTotal, stats.ChunksKept, stats.ChunksDropped)
	}

	return NewEngine(keywordEmbedder{}, store, "kb", nil), guideText, handbookText
}

func TestRetrieve_IngestedCorpus(t *testing.T) {
	engine, guideText, _ := ingestFixture(t)

	sources, err := engine.Retrieve(context.Background(), "How is the degree programme structured?", 5, "")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Retrieve() returned %d sources, want 2", len(sources))
	}

	first := sources[0]
	if first.DocID != "guide" || first.Page != 2 || first.ChunkID != 1 {
		t.Errorf("first source = %s p%d chunk %d, want guide p2 chunk 1",
			first.DocID, first.Page, first.ChunkID)
	}
	if first.Text != guideText {
		t.Errorf("first source text does not round-trip the page paragraph")
	}
	if first.Distance != 0 {
		t.Errorf("first source distance = %v, want 0 for an exact topic match", first.Distance)
	}
	if sources[1].Distance < first.Distance {
		t.Error("Retrieve() sources not in ascending distance order")
	}

	for _, src := range sources {
		if src.ChunkID == 0 {
			t.Error("noise cover chunk leaked into the index")
		}
	}
}

func TestRetrieve_ScopeIsolation(t *testing.T) {
	engine, _, handbookText := ingestFixture(t)

	tests := []struct {
		name      string
		question  string
		docID     string
		wantDoc   string
		wantPage  int
		wantChunk int
		wantText  string
	}{
		{
			name:      "scoped to guide",
			question:  "How is the degree programme structured?",
			docID:     "guide",
			wantDoc:   "guide",
			wantPage:  2,
			wantChunk: 1,
		},
		{
			name:      "scoped to handbook",
			question:  "How does the thesis process start?",
			docID:     "handbook",
			wantDoc:   "handbook",
			wantPage:  4,
			wantChunk: 2,
			wantText:  handbookText,
		},
		{
			name:      "cross-topic question stays in scope",
			question:  "How is the degree programme structured?",
			docID:     "handbook",
			wantDoc:   "handbook",
			wantPage:  4,
			wantChunk: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources, err := engine.Retrieve(context.Background(), tt.question, 5, tt.docID)
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}

			if len(sources) != 1 {
				t.Fatalf("Retrieve() returned %d sources, want exactly 1 within scope", len(sources))
			}

			src := sources[0]
			if src.DocID != tt.wantDoc {
				t.Errorf("DocID = %v, want %v", src.DocID, tt.wantDoc)
			}
			if src.Page != tt.wantPage {
				t.Errorf("Page = %v, want %v", src.Page, tt.wantPage)
			}
			if src.ChunkID != tt.wantChunk {
				t.Errorf("ChunkID = %v, want %v", src.ChunkID, tt.wantChunk)
			}
			if tt.wantText != "" && src.Text != tt.wantText {
				t.Errorf("Text = %q, want the ingested paragraph", src.Text)
			}
		})
	}
}

func TestRetrieve_UnknownScope(t *testing.T) {
	engine, _, _ := ingestFixture(t)

	sources, err := engine.Retrieve(context.Background(), "How is the degree programme structured?", 5, "no-such-doc")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("Retrieve() returned %d sources for an unknown doc_id, want 0", len(sources))
	}
}
