package driven

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// SessionStore persists sessions, their document descriptors and the raw
// chunk list an index is rebuilt from.
type SessionStore interface {
	// Create stores a new session. Returns domain.ErrAlreadyExists on conflict.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session with its documents.
	// Returns domain.ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Delete removes a session and everything it owns.
	// Returns domain.ErrNotFound if the session does not exist.
	Delete(ctx context.Context, id string) error

	// AppendDocument records a document and appends its chunks in one step.
	// Chunk IDs must already continue the session's sequence.
	AppendDocument(ctx context.Context, id string, doc domain.DocumentDescriptor, chunks []domain.Chunk) error

	// GetChunks returns the session's raw chunk list ordered by ID.
	GetChunks(ctx context.Context, id string) ([]domain.Chunk, error)
}
