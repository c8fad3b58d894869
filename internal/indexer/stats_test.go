package indexer

import (
	"strings"
	"testing"

	"pdfrag/internal/storage"
)

func chunksWithLengths(lengths ...int) []storage.ChunkRecord {
	chunks := make([]storage.ChunkRecord, len(lengths))
	for i, n := range lengths {
		chunks[i] = storage.ChunkRecord{Text: strings.Repeat("a", n)}
	}
	return chunks
}

func TestComputeCharStats(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []storage.ChunkRecord
		wantMin  int
		wantMax  int
		wantMean float64
		wantP95  int
	}{
		{
			name:   "empty",
			chunks: nil,
		},
		{
			name:     "single chunk",
			chunks:   chunksWithLengths(42),
			wantMin:  42,
			wantMax:  42,
			wantMean: 42,
			wantP95:  42,
		},
		{
			name:     "small distribution",
			chunks:   chunksWithLengths(10, 20, 30, 40),
			wantMin:  10,
			wantMax:  40,
			wantMean: 25,
			wantP95:  40,
		},
		{
			name:     "unsorted input",
			chunks:   chunksWithLengths(40, 10, 30, 20),
			wantMin:  10,
			wantMax:  40,
			wantMean: 25,
			wantP95:  40,
		},
		{
			name:     "mean rounded to two decimals",
			chunks:   chunksWithLengths(1, 1, 2),
			wantMin:  1,
			wantMax:  2,
			wantMean: 1.33,
			wantP95:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeCharStats(tt.chunks)

			if got.Min != tt.wantMin {
				t.Errorf("computeCharStats() Min = %d, want %d", got.Min, tt.wantMin)
			}
			if got.Max != tt.wantMax {
				t.Errorf("computeCharStats() Max = %d, want %d", got.Max, tt.wantMax)
			}
			if got.Mean != tt.wantMean {
				t.Errorf("computeCharStats() Mean = %v, want %v", got.Mean, tt.wantMean)
			}
			if got.P95 != tt.wantP95 {
				t.Errorf("computeCharStats() P95 = %d, want %d", got.P95, tt.wantP95)
			}
		})
	}
}

func TestComputeCharStats_P95(t *testing.T) {
	lengths := make([]int, 0, 20)
	for i := 1; i <= 20; i++ {
		lengths = append(lengths, i)
	}

	got := computeCharStats(chunksWithLengths(lengths...))
	if got.P95 != 20 {
		t.Errorf("computeCharStats() P95 = %d, want 20", got.P95)
	}
	if got.Mean != 10.5 {
		t.Errorf("computeCharStats() Mean = %v, want 10.5", got.Mean)
	}
}

func TestComputeCharStats_CountsRunes(t *testing.T) {
	chunks := []storage.ChunkRecord{{Text: "ééé"}}

	got := computeCharStats(chunks)
	if got.Min != 3 || got.Max != 3 {
		t.Errorf("computeCharStats() Min/Max = %d/%d, want 3/3 (runes, not bytes)", got.Min, got.Max)
	}
}
