package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService owns session lifecycle. Sessions are created on first
// reference and torn down only by Delete, which also removes the index.
type SessionService struct {
	store   driven.SessionStore
	indexes driving.IndexService
	locator func(sessionID string) string
	now     func() time.Time
}

// NewSessionService creates a session service. locator maps a session id to
// its index location and may be nil.
func NewSessionService(
	store driven.SessionStore, indexes driving.IndexService, locator func(string) string,
) *SessionService {
	return &SessionService{
		store:   store,
		indexes: indexes,
		locator: locator,
		now:     time.Now,
	}
}

// NewSessionID returns an id of the form session_YYYYmmdd_HHMMSS_<8 hex>.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session_%s_%s", now.Format("20060102_150405"), suffix)
}

// Create starts a new session with a generated id.
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{ID: NewSessionID(now), CreatedAt: now.UTC()}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.withLocation(session), nil
}

// Ensure returns the session, creating it if this is its first reference.
func (s *SessionService) Ensure(ctx context.Context, id string) (*domain.Session, error) {
	if err := ValidateSessionID(id); err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, id)
	if err == nil {
		return s.withLocation(session), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session = &domain.Session{ID: id, CreatedAt: s.now().UTC()}
	err = s.store.Create(ctx, session)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Lost a race with a concurrent first reference.
		return s.Get(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.withLocation(session), nil
}

// Get retrieves a session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withLocation(session), nil
}

// List returns all sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for i := range sessions {
		s.withLocation(&sessions[i])
	}
	return sessions, nil
}

// Delete removes the session's index, then its stored state.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if s.indexes != nil {
		if _, err := s.indexes.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *SessionService) withLocation(session *domain.Session) *domain.Session {
	if s.locator != nil {
		session.IndexPath = s.locator(session.ID)
	}
	return session
}

// ValidateSessionID accepts ids that start with a letter or digit and
// continue with letters, digits, '_', '-' or '.'.
func ValidateSessionID(id string) error {
	if id == "" || len(id) > 128 || strings.Contains(id, "..") {
		return fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, id)
	}
	for i, r := range id {
		ok := (i > 0 && (r == '_' || r == '-' || r == '.')) ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, id)
		}
	}
	return nil
}
