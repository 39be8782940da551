package driven

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// IndexStore persists the three artifacts of a session index: vectors,
// aligned chunk metadata and provenance. They are written and read as a unit.
type IndexStore interface {
	// Save replaces the session's artifacts atomically. A concurrent Load
	// observes either the previous or the new index, never a mix.
	Save(ctx context.Context, idx *domain.SessionIndex) error

	// Load returns the session index.
	// Returns domain.ErrIndexNotFound if nothing is stored and
	// domain.ErrIndexCorruption if the artifacts disagree.
	Load(ctx context.Context, sessionID string) (*domain.SessionIndex, error)

	// Delete removes all artifacts. Returns whether anything was removed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// Stat summarises the stored index without loading vectors.
	// A missing index yields Exists == false and no error.
	Stat(ctx context.Context, sessionID string) (*domain.IndexStats, error)

	// List returns the IDs of sessions that have an index.
	List(ctx context.Context) ([]string, error)

	// Location returns a human-readable handle for the session's artifacts.
	Location(sessionID string) string
}
