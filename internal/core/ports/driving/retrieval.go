package driving

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// RetrievalService finds the chunks relevant to a query.
type RetrievalService interface {
	// Search runs semantic search and falls back to a keyword scan over the
	// session's chunks. A session with no index and no stored chunks yields
	// StrategyNone and no error.
	Search(ctx context.Context, sessionID, query string, topK int) (*domain.Retrieval, error)

	// SelectDiverse picks at most numItems results from pool.
	SelectDiverse(pool []domain.SearchResult, numItems int) []domain.SearchResult

	// SelectForGeneration picks numItems source chunks for summaries,
	// flashcards or quizzes from the session's indexed chunks.
	SelectForGeneration(ctx context.Context, sessionID string, numItems int) ([]domain.Chunk, error)
}

// CitationService attributes retrieved chunks and generated answers.
// None of its operations fail.
type CitationService interface {
	// ExtractSources maps chunks to source descriptors deduplicated by (type, source).
	ExtractSources(chunks []domain.Chunk) []domain.SourceRef

	// ExtractCitations returns the distinct citation markers found in text.
	ExtractCitations(text string) []string

	// Confidence averages the results' similarity scores into [0, 1].
	Confidence(results []domain.SearchResult, query string) float64
}

// AnswerService answers questions grounded on a session's content.
type AnswerService interface {
	// Ask retrieves context, generates an answer and attributes it.
	// Returns domain.ErrLLMUnavailable if no LLM is configured.
	Ask(ctx context.Context, sessionID, question string, topK int) (*domain.Answer, error)
}
