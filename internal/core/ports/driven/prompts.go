package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the template for name, falling back to the built-in default.
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()

	// Dir returns the directory templates are read from.
	Dir() string
}

// Prompt names.
const (
	// PromptAnswerSystem is the system message for grounded answers.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the context and question. Placeholders: %s context, %s question.
	PromptAnswerUser = "answer_user"

	// PromptSummarySystem is the system message for summaries.
	// Placeholders: %s summary kind.
	PromptSummarySystem = "summary_system"

	// PromptSummaryUser wraps the content. Placeholders: %s kind, %d words, %s content.
	PromptSummaryUser = "summary_user"

	// PromptFlashcardsSystem asks for a JSON array of cards.
	PromptFlashcardsSystem = "flashcards_system"

	// PromptFlashcardsUser wraps the content. Placeholders: %d count, %s content.
	PromptFlashcardsUser = "flashcards_user"

	// PromptQuizSystem asks for a JSON object with a questions array.
	// Placeholders: %d count, %s difficulty.
	PromptQuizSystem = "quiz_system"

	// PromptQuizUser wraps the content. Placeholders: %d count, %s content.
	PromptQuizUser = "quiz_user"

	// PromptExplainSystem is the system message for concept explanations.
	PromptExplainSystem = "explain_system"

	// PromptExplainUser wraps the context. Placeholders: %s concept, %s style, %s context.
	PromptExplainUser = "explain_user"
)
