package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
	"github.com/custodia-labs/kensho/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService builds and manages per-session vector indexes.
// Writes for one session are serialised; different sessions are independent.
type IndexService struct {
	embedder *EmbeddingProvider
	store    driven.IndexStore
	sessions driven.SessionStore
	locks    sessionLocks
	now      func() time.Time
}

// NewIndexService creates an index service. sessions supplies the raw chunk
// list for Rebuild and may be nil, in which case Rebuild re-embeds the
// chunks held by the current index.
func NewIndexService(embedder *EmbeddingProvider, store driven.IndexStore, sessions driven.SessionStore) *IndexService {
	return &IndexService{
		embedder: embedder,
		store:    store,
		sessions: sessions,
		now:      time.Now,
	}
}

// Build embeds the chunks and replaces the session's index.
func (s *IndexService) Build(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.build(ctx, sessionID, chunks)
}

func (s *IndexService) build(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	for i, c := range chunks {
		if c.ID != i {
			return fmt.Errorf("%w: chunk at position %d has id %d", domain.ErrInvalidInput, i, c.ID)
		}
	}

	defer logger.Timed(fmt.Sprintf("build index %s (%d chunks)", sessionID, len(chunks)))()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	batch, err := s.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("build index %s: %w", sessionID, err)
	}

	idx := &domain.SessionIndex{
		SessionID: sessionID,
		Vectors:   batch.Vectors,
		Chunks:    chunks,
		Provenance: domain.IndexProvenance{
			Model:      batch.Model,
			Dimension:  batch.Dimension,
			ChunkCount: len(chunks),
			Remote:     batch.Remote,
			BuiltAt:    s.now().UTC(),
		},
	}
	if err := s.store.Save(ctx, idx); err != nil {
		return fmt.Errorf("save index %s: %w", sessionID, err)
	}

	logger.Info("indexed %d chunks for %s with %s (dim %d, remote=%t)",
		len(chunks), sessionID, batch.Model, batch.Dimension, batch.Remote)
	return nil
}

// Load returns the session's index.
func (s *IndexService) Load(ctx context.Context, sessionID string) (*domain.SessionIndex, error) {
	return s.store.Load(ctx, sessionID)
}

// Delete removes the session's index.
func (s *IndexService) Delete(ctx context.Context, sessionID string) (bool, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	deleted, err := s.store.Delete(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("delete index %s: %w", sessionID, err)
	}
	return deleted, nil
}

// Rebuild re-embeds the session's raw chunk list with the current embedding
// configuration.
func (s *IndexService) Rebuild(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	chunks, err := s.rawChunks(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("rebuild index %s: %w", sessionID, err)
	}
	logger.Info("rebuilding index %s from %d stored chunks", sessionID, len(chunks))
	return s.build(ctx, sessionID, chunks)
}

func (s *IndexService) rawChunks(ctx context.Context, sessionID string) ([]domain.Chunk, error) {
	if s.sessions != nil {
		return s.sessions.GetChunks(ctx, sessionID)
	}
	idx, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return idx.Chunks, nil
}

// Stats summarises the session's index.
func (s *IndexService) Stats(ctx context.Context, sessionID string) (*domain.IndexStats, error) {
	stats, err := s.store.Stat(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("stat index %s: %w", sessionID, err)
	}
	return stats, nil
}

// ListIndexed returns stats for every indexed session, most chunks first.
func (s *IndexService) ListIndexed(ctx context.Context) ([]domain.IndexStats, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.IndexStats, 0, len(ids))
	for _, id := range ids {
		stats, err := s.store.Stat(ctx, id)
		if err != nil {
			logger.Warn("skipping index %s: %v", id, err)
			continue
		}
		if stats.Exists {
			out = append(out, *stats)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChunkCount != out[j].ChunkCount {
			return out[i].ChunkCount > out[j].ChunkCount
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out, nil
}

// AllChunks returns the indexed chunks in order.
func (s *IndexService) AllChunks(ctx context.Context, sessionID string) ([]domain.Chunk, error) {
	idx, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return idx.Chunks, nil
}

// IsRecoverable reports whether err from Load means a rebuild may help.
func IsRecoverable(err error) bool {
	return errors.Is(err, domain.ErrIndexCorruption) || errors.Is(err, domain.ErrEmbeddingMismatch)
}

// sessionLocks hands out one mutex per session id and forgets idle ones.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	sl, ok := l.locks[id]
	if !ok {
		sl = &sessionLock{}
		l.locks[id] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
