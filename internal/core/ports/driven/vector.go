package driven

import "context"

// VectorIndex provides exact similarity search over one session's vectors.
// Vectors are L2-normalised on insert so inner product equals cosine similarity.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID int, embedding []float32) error

	// Search returns up to k hits in descending similarity, ties by ascending chunk ID.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorIndexFactory creates an empty index of the given dimension.
type VectorIndexFactory func(dimensions int) VectorIndex

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID int

	// Similarity is the cosine similarity score in [-1, 1].
	Similarity float64
}
