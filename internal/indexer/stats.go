package indexer

import (
	"math"
	"sort"
	"unicode/utf8"

	"helpcenter-sync/internal/chunking"
)

// ChunkStats summarizes the sizes of a set of chunks.
type ChunkStats struct {
	// Chunks is the number of chunks.
	Chunks int `json:"chunks"`
	// Min is the smallest chunk text length in characters.
	Min int `json:"min_chars"`
	// Max is the largest chunk text length in characters.
	Max int `json:"max_chars"`
	// Mean is the mean chunk text length, rounded to 2 decimals.
	Mean float64 `json:"mean_chars"`
	// P95 is the 95th percentile chunk text length.
	P95 int `json:"p95_chars"`
	// Oversized counts chunks whose raw text exceeds the hard cap.
	Oversized int `json:"oversized"`
	// TOC counts table-of-contents chunks.
	TOC int `json:"toc"`
}

// ComputeChunkStats measures chunk text lengths in characters.
func ComputeChunkStats(chunks []chunking.Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	sizes := make([]int, 0, len(chunks))
	stats := ChunkStats{Chunks: len(chunks)}
	for _, c := range chunks {
		sizes = append(sizes, utf8.RuneCountInString(c.Text))
		if c.Oversized {
			stats.Oversized++
		}
		if c.IsTOC {
			stats.TOC++
		}
	}

	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sizes {
		sum += n
	}
	mean := float64(sum) / float64(len(sizes))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Mean = math.Round(mean*100) / 100
	stats.P95 = sorted[p95Index]
	return stats
}
