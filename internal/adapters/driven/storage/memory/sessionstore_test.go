package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &domain.Session{ID: "a", CreatedAt: base}))
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "b", CreatedAt: base.Add(time.Minute)}))
	assert.ErrorIs(t, store.Create(ctx, &domain.Session{ID: "a"}), domain.ErrAlreadyExists)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.ErrorIs(t, store.Delete(ctx, "a"), domain.ErrNotFound)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_AppendDocument(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "s"}))

	doc := domain.DocumentDescriptor{Type: domain.DocumentTypeText, Source: "pasted", ChunkCount: 2}
	chunks := []domain.Chunk{{ID: 0, Text: "a"}, {ID: 1, Text: "b"}}
	require.NoError(t, store.AppendDocument(ctx, "s", doc, chunks))

	err := store.AppendDocument(ctx, "s", doc, []domain.Chunk{{ID: 0}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := store.GetChunks(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got[0].Text = "mutated"
	again, err := store.GetChunks(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Text)

	session, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, session.Documents, 1)
	assert.Equal(t, 2, session.ChunkCount())

	assert.ErrorIs(t, store.AppendDocument(ctx, "missing", doc, nil), domain.ErrNotFound)
}

func TestIndexStore_SaveLoadDelete(t *testing.T) {
	store := NewIndexStore()
	ctx := context.Background()

	idx := &domain.SessionIndex{
		SessionID:  "s",
		Vectors:    [][]float32{{1, 0}},
		Chunks:     []domain.Chunk{{ID: 0, Text: "x"}},
		Provenance: domain.IndexProvenance{Model: "m", Dimension: 2, ChunkCount: 1},
	}
	require.NoError(t, store.Save(ctx, idx))
	idx.Vectors[0][0] = 9

	got, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Vectors[0][0])

	stats, err := store.Stat(ctx, "s")
	require.NoError(t, err)
	assert.True(t, stats.Exists)
	assert.Equal(t, int64(8), stats.SizeBytes)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	deleted, err := store.Delete(ctx, "s")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = store.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

func TestIndexStore_RejectsMisaligned(t *testing.T) {
	store := NewIndexStore()
	idx := &domain.SessionIndex{
		SessionID:  "s",
		Vectors:    [][]float32{{1, 0}},
		Provenance: domain.IndexProvenance{Dimension: 2},
	}
	assert.ErrorIs(t, store.Save(context.Background(), idx), domain.ErrIndexCorruption)
}
