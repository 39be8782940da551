package driving

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// SessionService manages session lifecycle.
type SessionService interface {
	// Create starts a new session with a generated ID.
	Create(ctx context.Context) (*domain.Session, error)

	// Ensure returns the session, creating it on first reference.
	Ensure(ctx context.Context, id string) (*domain.Session, error)

	// Get retrieves a session. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes the session, its documents, chunks and index.
	Delete(ctx context.Context, id string) error
}
