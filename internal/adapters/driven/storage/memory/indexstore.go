package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory driven.IndexStore. Save swaps a whole index
// under the lock, so Load never sees a partial write.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.SessionIndex
}

// NewIndexStore creates an empty index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]*domain.SessionIndex)}
}

func cloneIndex(idx *domain.SessionIndex) *domain.SessionIndex {
	out := *idx
	out.Chunks = slices.Clone(idx.Chunks)
	out.Vectors = make([][]float32, len(idx.Vectors))
	for i, v := range idx.Vectors {
		out.Vectors[i] = slices.Clone(v)
	}
	return &out
}

// Save replaces the session's index.
func (s *IndexStore) Save(_ context.Context, idx *domain.SessionIndex) error {
	if err := idx.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	c := cloneIndex(idx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[idx.SessionID] = c
	return nil
}

// Load returns a copy of the session's index.
func (s *IndexStore) Load(_ context.Context, sessionID string) (*domain.SessionIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrIndexNotFound)
	}
	return cloneIndex(idx), nil
}

// Delete removes the session's index.
func (s *IndexStore) Delete(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indexes[sessionID]
	delete(s.indexes, sessionID)
	return ok, nil
}

// Stat reports provenance. SizeBytes approximates the vector payload.
func (s *IndexStore) Stat(_ context.Context, sessionID string) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.IndexStats{SessionID: sessionID}
	idx, ok := s.indexes[sessionID]
	if !ok {
		return stats, nil
	}
	p := idx.Provenance
	stats.Exists = true
	stats.Model = p.Model
	stats.Dimension = p.Dimension
	stats.ChunkCount = p.ChunkCount
	stats.Remote = p.Remote
	stats.SizeBytes = int64(4 * p.Dimension * len(idx.Vectors))
	return stats, nil
}

// List returns indexed session IDs, sorted.
func (s *IndexStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.indexes))
	for id := range s.indexes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Location returns a pseudo path for the session.
func (s *IndexStore) Location(sessionID string) string {
	return ":memory:/" + sessionID
}
