package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SummaryKind selects the shape of a generated summary.
type SummaryKind string

// Summary kinds.
const (
	SummaryComprehensive SummaryKind = "comprehensive"
	SummaryKeyPoints     SummaryKind = "key_points"
	SummaryExecutive     SummaryKind = "executive"
)

// IsValid reports whether k is a known summary kind.
func (k SummaryKind) IsValid() bool {
	switch k {
	case SummaryComprehensive, SummaryKeyPoints, SummaryExecutive:
		return true
	}
	return false
}

// QuizDifficulty is the requested difficulty of a quiz.
type QuizDifficulty string

// Quiz difficulties. Mixed asks for a spread across the other three.
const (
	DifficultyEasy   QuizDifficulty = "easy"
	DifficultyMedium QuizDifficulty = "medium"
	DifficultyHard   QuizDifficulty = "hard"
	DifficultyMixed  QuizDifficulty = "mixed"
)

// IsValid reports whether d is a known difficulty.
func (d QuizDifficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed:
		return true
	}
	return false
}

// ExplainStyle selects how a concept is explained.
type ExplainStyle string

// Explanation styles.
const (
	ExplainSimple   ExplainStyle = "simple"
	ExplainDetailed ExplainStyle = "detailed"
	ExplainAnalogy  ExplainStyle = "analogy"
)

// IsValid reports whether s is a known style.
func (s ExplainStyle) IsValid() bool {
	switch s {
	case ExplainSimple, ExplainDetailed, ExplainAnalogy:
		return true
	}
	return false
}

// Summary is a generated overview of a session's content.
type Summary struct {
	Text         string      `json:"summary"`
	Kind         SummaryKind `json:"type"`
	WordCount    int         `json:"word_count"`
	Sources      []SourceRef `json:"sources"`
	SourceChunks []int       `json:"source_chunks"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Flashcard is a single question and answer pair.
type Flashcard struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty,omitempty"`
	BloomLevel string `json:"bloom_level,omitempty"`
}

// FlashcardSet is a batch of flashcards and the chunks they were drawn from.
type FlashcardSet struct {
	Cards        []Flashcard `json:"flashcards"`
	SourceChunks []int       `json:"source_chunks"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AnswerKey is the correct option of a quiz question. Models return either
// the option text, a letter, or a zero-based index; an index is stored as
// its letter.
type AnswerKey string

// UnmarshalJSON accepts a string or a number.
func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = AnswerKey(strings.TrimSpace(s))
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 || n > 25 {
		return fmt.Errorf("answer key %s: not a string or option index", data)
	}
	*k = AnswerKey(rune('A' + n))
	return nil
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer AnswerKey `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	Difficulty    string    `json:"difficulty,omitempty"`
}

// Quiz is a batch of questions and the chunks they were drawn from.
type Quiz struct {
	Questions    []QuizQuestion `json:"questions"`
	Difficulty   QuizDifficulty `json:"difficulty"`
	SourceChunks []int          `json:"source_chunks"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Explanation is a generated explanation of a concept grounded on retrieved
// chunks.
type Explanation struct {
	Concept    string            `json:"concept"`
	Text       string            `json:"explanation"`
	Style      ExplainStyle      `json:"style"`
	Sources    []SourceRef       `json:"sources"`
	Citations  []string          `json:"citations"`
	Confidence float64           `json:"confidence"`
	Strategy   RetrievalStrategy `json:"strategy"`
}
