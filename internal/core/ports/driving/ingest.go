package driving

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// IngestService turns raw material into indexed session content.
type IngestService interface {
	// Process chunks raw content, appends it to the session and rebuilds the
	// session index over all of its chunks.
	// Returns domain.ErrIngestion for empty or malformed content.
	Process(ctx context.Context, sessionID string, raw domain.RawContent) (*domain.IngestResult, error)

	// IngestPDF extracts page text from the file at path and processes it.
	IngestPDF(ctx context.Context, sessionID, path string) (*domain.IngestResult, error)

	// IngestAudio transcribes the file at path and processes the transcript.
	// source identifies the original media (e.g. a video URL).
	IngestAudio(ctx context.Context, sessionID, path, source string) (*domain.IngestResult, error)
}
