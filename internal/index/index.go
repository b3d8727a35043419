// Package index provides the immutable per-source vector index. An Index is
// never mutated after construction; a changed source gets a new fingerprint
// and a new Index, so concurrent readers need no locking.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/The-Name-is-Karthik/Multi-Source-RAG-Engine/internal/domain"
)

// Result is one similarity-search hit.
type Result struct {
	Chunk domain.Chunk
	Score float32
}

// Index holds (chunk, embedding) pairs for exactly one source and supports
// nearest-neighbor lookup by cosine similarity.
type Index struct {
	dim     int
	chunks  []domain.Chunk
	vectors [][]float32
}

// New builds an Index from chunks and their embeddings. The i-th vector must
// correspond to the i-th chunk and all vectors must share one dimension.
func New(chunks []domain.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("index: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	dim := 0
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("index: empty vector at position %d", i)
		}
		if dim == 0 {
			dim = len(v)
		} else if len(v) != dim {
			return nil, fmt.Errorf("index: vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	ix := &Index{
		dim:     dim,
		chunks:  make([]domain.Chunk, len(chunks)),
		vectors: make([][]float32, len(vectors)),
	}
	copy(ix.chunks, chunks)
	for i, v := range vectors {
		vec := make([]float32, len(v))
		copy(vec, v)
		ix.vectors[i] = vec
	}
	return ix, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Dimension returns the embedding dimension, or 0 for an empty index.
func (ix *Index) Dimension() int { return ix.dim }

// Chunks returns a copy of the indexed chunks in insertion order.
func (ix *Index) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(ix.chunks))
	copy(out, ix.chunks)
	return out
}

// Search returns the k chunks nearest to the query vector by cosine
// similarity, best first. Ties preserve chunk order, which keeps ranking
// deterministic. Returns fewer than k results when the index is smaller.
func (ix *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("index: query has dimension %d, want %d", len(query), ix.dim)
	}
	if k <= 0 || ix.Len() == 0 {
		return nil, nil
	}

	results := make([]Result, len(ix.chunks))
	for i := range ix.vectors {
		results[i] = Result{
			Chunk: ix.chunks[i],
			Score: cosineSimilarity(query, ix.vectors[i]),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
