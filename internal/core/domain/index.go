package domain

import (
	"fmt"
	"math"
	"time"
)

// IndexProvenance records how a session's vectors were produced.
type IndexProvenance struct {
	// Model is the embedding model identifier.
	Model string `json:"model"`

	// Dimension is the vector length.
	Dimension int `json:"dimension"`

	// ChunkCount is the number of vectors and chunks.
	ChunkCount int `json:"chunk_count"`

	// Remote is true when vectors came from the remote embedding path.
	Remote bool `json:"use_remote"`

	// BuiltAt is when the index was written.
	BuiltAt time.Time `json:"built_at"`
}

// SessionIndex pairs L2-normalised vectors with positionally aligned chunks.
type SessionIndex struct {
	SessionID  string
	Vectors    [][]float32
	Chunks     []Chunk
	Provenance IndexProvenance
}

// Validate checks the alignment invariants. Any violation wraps ErrIndexCorruption.
func (i *SessionIndex) Validate() error {
	if len(i.Vectors) != len(i.Chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", ErrIndexCorruption, len(i.Vectors), len(i.Chunks))
	}
	if i.Provenance.ChunkCount != len(i.Chunks) {
		return fmt.Errorf("%w: provenance records %d chunks, metadata has %d",
			ErrIndexCorruption, i.Provenance.ChunkCount, len(i.Chunks))
	}
	for n, v := range i.Vectors {
		if len(v) != i.Provenance.Dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d",
				ErrIndexCorruption, n, len(v), i.Provenance.Dimension)
		}
	}
	for n, c := range i.Chunks {
		if c.ID != n {
			return fmt.Errorf("%w: chunk at position %d has id %d", ErrIndexCorruption, n, c.ID)
		}
	}
	return nil
}

// IndexStats summarises a session's index.
type IndexStats struct {
	SessionID  string `json:"session_id"`
	Exists     bool   `json:"index_exists"`
	Model      string `json:"model,omitempty"`
	Dimension  int    `json:"dimension,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	Remote     bool   `json:"use_remote"`
	SizeBytes  int64  `json:"size_bytes"`
}

// SizeMB returns the artifact size in megabytes rounded to two decimals.
func (s IndexStats) SizeMB() float64 {
	mb := float64(s.SizeBytes) / (1024 * 1024)
	return float64(int64(mb*100+0.5)) / 100
}

// Normalize returns a unit-length copy of v. A zero vector comes back as a
// zero vector of the same length.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
