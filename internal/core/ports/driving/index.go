package driving

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// IndexService manages per-session vector indexes.
type IndexService interface {
	// Build embeds the chunks and atomically replaces the session index.
	// Returns domain.ErrEmbeddingUnavailable if no vectors could be produced;
	// nothing is written in that case.
	Build(ctx context.Context, sessionID string, chunks []domain.Chunk) error

	// Load returns the session index.
	// Returns domain.ErrIndexNotFound or domain.ErrIndexCorruption.
	Load(ctx context.Context, sessionID string) (*domain.SessionIndex, error)

	// Delete removes the session index. Returns whether anything was removed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// Rebuild re-embeds the session's stored raw chunk list.
	Rebuild(ctx context.Context, sessionID string) error

	// Stats summarises the session index.
	Stats(ctx context.Context, sessionID string) (*domain.IndexStats, error)

	// ListIndexed returns stats for every indexed session, largest first.
	ListIndexed(ctx context.Context) ([]domain.IndexStats, error)

	// AllChunks returns the indexed chunk metadata in order.
	AllChunks(ctx context.Context, sessionID string) ([]domain.Chunk, error)
}
