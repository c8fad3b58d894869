package indexer

import (
	"math"
	"sort"
	"unicode/utf8"

	"pdfrag/internal/storage"
)

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	// PagesRead is the number of page records feeding the run.
	PagesRead int `json:"pages_read"`
	// ChunksTotal is the number of chunks produced by chunking.
	ChunksTotal int `json:"chunks_total"`
	// ChunksKept is the number of chunks that survived noise filtering.
	ChunksKept int `json:"chunks_kept"`
	// ChunksDropped is the number of chunks discarded as noise.
	ChunksDropped int `json:"chunks_dropped"`
	// ChunksPerDoc maps doc id to its kept chunk count.
	ChunksPerDoc map[string]int `json:"chunks_per_doc"`
	// CharStats summarizes kept chunk lengths.
	CharStats ChunkCharStats `json:"chunk_char_stats"`
}

// ChunkCharStats contains statistics about chunk lengths in runes.
type ChunkCharStats struct {
	// Min is the minimum chunk length.
	Min int `json:"min"`
	// Max is the maximum chunk length.
	Max int `json:"max"`
	// Mean is the mean chunk length.
	Mean float64 `json:"mean"`
	// P95 is the 95th percentile chunk length.
	P95 int `json:"p95"`
}

// computeCharStats computes min, max, mean, and p95 from chunk lengths.
func computeCharStats(chunks []storage.ChunkRecord) ChunkCharStats {
	if len(chunks) == 0 {
		return ChunkCharStats{}
	}

	lengths := make([]int, 0, len(chunks))
	for _, chunk := range chunks {
		lengths = append(lengths, utf8.RuneCountInString(chunk.Text))
	}
	sort.Ints(lengths)

	min := lengths[0]
	max := lengths[len(lengths)-1]

	sum := 0
	for _, length := range lengths {
		sum += length
	}
	mean := float64(sum) / float64(len(lengths))

	p95Index := int(math.Ceil(float64(len(lengths)) * 0.95))
	if p95Index >= len(lengths) {
		p95Index = len(lengths) - 1
	}

	return ChunkCharStats{
		Min:  min,
		Max:  max,
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  lengths[p95Index],
	}
}
