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

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

type sessionRecord struct {
	session domain.Session
	chunks  []domain.Chunk
}

// SessionStore is an in-memory driven.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionRecord)}
}

// Create stores a new session.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrAlreadyExists)
	}
	rec := &sessionRecord{session: *session}
	rec.session.Documents = slices.Clone(session.Documents)
	s.sessions[session.ID] = rec
	return nil
}

// Get returns a copy of the session.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	session := rec.session
	session.Documents = slices.Clone(rec.session.Documents)
	return &session, nil
}

// List returns all sessions, newest first.
func (s *SessionStore) List(ctx context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

// Delete removes a session and its chunks.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// AppendDocument records the descriptor and appends chunks atomically.
func (s *SessionStore) AppendDocument(
	_ context.Context, id string, doc domain.DocumentDescriptor, chunks []domain.Chunk,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	next := len(rec.chunks)
	for i, c := range chunks {
		if c.ID != next+i {
			return fmt.Errorf("%w: chunk id %d, want %d", domain.ErrInvalidInput, c.ID, next+i)
		}
	}
	rec.session.Documents = append(rec.session.Documents, doc)
	rec.chunks = append(rec.chunks, chunks...)
	return nil
}

// GetChunks returns a copy of the session's chunks.
func (s *SessionStore) GetChunks(_ context.Context, id string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return slices.Clone(rec.chunks), nil
}
