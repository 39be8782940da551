// Package flat provides an exact inner-product vector index.
//
// Vectors are L2-normalised on insert and queries are normalised before
// scoring, so the inner product equals cosine similarity. Search scans
// every row, which is exact and fast enough for per-session indexes of a
// few thousand chunks.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("flat: index closed")

// Index stores normalised vectors in insertion order.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []int
	rows      [][]float32
	closed    bool
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) *Index {
	return &Index{dimension: dimension}
}

// Factory adapts New to driven.VectorIndexFactory.
func Factory(dimension int) driven.VectorIndex {
	return New(dimension)
}

// Add inserts a normalised copy of embedding for the given chunk ID.
func (idx *Index) Add(_ context.Context, chunkID int, embedding []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.closed {
		return ErrClosed
	}
	if len(embedding) != idx.dimension {
		return fmt.Errorf("%w: vector has dimension %d, index expects %d",
			domain.ErrInvalidInput, len(embedding), idx.dimension)
	}

	idx.ids = append(idx.ids, chunkID)
	idx.rows = append(idx.rows, domain.Normalize(embedding))
	return nil
}

// Search returns up to k hits by descending similarity, ties broken by
// ascending chunk ID.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.closed {
		return nil, ErrClosed
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrEmbeddingMismatch, len(query), idx.dimension)
	}
	if k <= 0 || len(idx.rows) == 0 {
		return nil, nil
	}

	q := domain.Normalize(query)
	hits := make([]driven.VectorHit, len(idx.rows))
	for i, row := range idx.rows {
		hits[i] = driven.VectorHit{ChunkID: idx.ids[i], Similarity: Dot(q, row)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Similarity != hits[b].Similarity {
			return hits[a].Similarity > hits[b].Similarity
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rows)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// Close releases the stored vectors.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.ids = nil
	idx.rows = nil
	return nil
}

// Dot returns the inner product of a and b, which must have equal length.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
