package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validIndex() *SessionIndex {
	return &SessionIndex{
		SessionID: "s1",
		Vectors:   [][]float32{{1, 0}, {0, 1}},
		Chunks: []Chunk{
			{ID: 0, Text: "a", ChunkIndex: 0, TotalChunks: 2},
			{ID: 1, Text: "b", ChunkIndex: 1, TotalChunks: 2},
		},
		Provenance: IndexProvenance{Model: "m", Dimension: 2, ChunkCount: 2},
	}
}

func TestSessionIndex_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validIndex().Validate())
	})

	t.Run("vector count mismatch", func(t *testing.T) {
		idx := validIndex()
		idx.Vectors = idx.Vectors[:1]
		assert.ErrorIs(t, idx.Validate(), ErrIndexCorruption)
	})

	t.Run("provenance count mismatch", func(t *testing.T) {
		idx := validIndex()
		idx.Provenance.ChunkCount = 3
		assert.ErrorIs(t, idx.Validate(), ErrIndexCorruption)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		idx := validIndex()
		idx.Vectors[1] = []float32{1, 0, 0}
		assert.ErrorIs(t, idx.Validate(), ErrIndexCorruption)
	})

	t.Run("non contiguous ids", func(t *testing.T) {
		idx := validIndex()
		idx.Chunks[1].ID = 5
		assert.ErrorIs(t, idx.Validate(), ErrIndexCorruption)
	})

	t.Run("empty", func(t *testing.T) {
		idx := &SessionIndex{Provenance: IndexProvenance{Dimension: 384}}
		assert.NoError(t, idx.Validate())
	})
}

func TestIndexStats_SizeMB(t *testing.T) {
	assert.Equal(t, 0.0, IndexStats{}.SizeMB())
	assert.Equal(t, 1.5, IndexStats{SizeBytes: 3 * 512 * 1024}.SizeMB())
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
	assert.Empty(t, Normalize(nil))

	in := []float32{2, 0}
	_ = Normalize(in)
	assert.Equal(t, []float32{2, 0}, in, "input must not be modified")
}
