package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// TextExtractor turns a raw document into page-delimited text.
type TextExtractor interface {
	// Extract returns one entry per page that has text, in page order.
	Extract(ctx context.Context, r io.ReaderAt, size int64) ([]domain.Page, error)
}

// ProgressFunc receives completion fractions in [0, 1].
type ProgressFunc func(fraction float64)

// Transcriber converts audio into a flat transcript.
type Transcriber interface {
	// Transcribe returns the transcript of the audio file at path.
	// progress may be nil.
	Transcribe(ctx context.Context, path string, progress ProgressFunc) (string, error)
}

// LLMService generates answer text from a conversation.
type LLMService interface {
	// Chat conducts a multi-turn conversation and returns the reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
