package services

import "github.com/custodia-labs/kensho/internal/core/ports/driven"

// fallbackPrompts are used when no prompt store is configured or it cannot
// serve a template. Placeholders match the driven.Prompt* constants.
var fallbackPrompts = map[string]string{
	driven.PromptAnswerSystem:     "Answer using only the supplied context and repeat its source markers.",
	driven.PromptAnswerUser:       "Context:\n%s\n\nQuestion: %s",
	driven.PromptSummarySystem:    "Write %s summaries using only the supplied content.",
	driven.PromptSummaryUser:      "Write a %s summary of at most %d words of:\n%s",
	driven.PromptFlashcardsSystem: `Return only a JSON array of flashcards with "question", "answer", "difficulty" and "bloom_level".`,
	driven.PromptFlashcardsUser:   "Create %d flashcards from:\n%s",
	driven.PromptQuizSystem:       quizSystemFallback,
	driven.PromptQuizUser:         "Create %d quiz questions from:\n%s",
	driven.PromptExplainSystem:    "Explain concepts from the supplied context and repeat its source markers.",
	driven.PromptExplainUser:      "Explain \"%s\" in a %s style.\n\nContext:\n%s",
}

const quizSystemFallback = `Write %d multiple-choice questions at %s difficulty with 4 options each. ` +
	`Return only a JSON object with a "questions" array of ` +
	`"question", "options", "correct_answer", "explanation" and "difficulty".`

// loadPrompt returns the stored template for name, or its fallback.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if t, err := store.Load(name); err == nil {
			return t
		}
	}
	return fallbackPrompts[name]
}
