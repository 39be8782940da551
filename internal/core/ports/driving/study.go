package driving

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// StudyService generates study material from a session's indexed chunks.
// Every method returns domain.ErrLLMUnavailable if no LLM is configured and
// domain.ErrIndexNotFound if the session has nothing indexed.
type StudyService interface {
	// Summary condenses the session into roughly maxWords words.
	Summary(ctx context.Context, sessionID string, kind domain.SummaryKind, maxWords int) (*domain.Summary, error)

	// Flashcards generates up to n question and answer cards.
	Flashcards(ctx context.Context, sessionID string, n int) (*domain.FlashcardSet, error)

	// Quiz generates up to n multiple-choice questions.
	Quiz(ctx context.Context, sessionID string, n int, difficulty domain.QuizDifficulty) (*domain.Quiz, error)

	// Explain retrieves topK chunks about concept and explains it in style.
	Explain(
		ctx context.Context, sessionID, concept string, style domain.ExplainStyle, topK int,
	) (*domain.Explanation, error)
}
