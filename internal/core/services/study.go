package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
	"github.com/custodia-labs/kensho/internal/logger"
)

// Ensure StudyService implements the interface.
var _ driving.StudyService = (*StudyService)(nil)

// Generation limits.
const (
	DefaultFlashcards    = 10
	DefaultQuizQuestions = 5
	DefaultSummaryWords  = 500
	MaxStudyItems        = 50

	// summaryChunks bounds how many chunks are read for a summary.
	summaryChunks = 64

	// Content sent to the model is cut to these many runes.
	summaryContentRunes = 8000
	itemContentRunes    = 6000
)

// StudyService turns a session's chunks into summaries, flashcards, quizzes
// and concept explanations.
type StudyService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	now       func() time.Time
}

// NewStudyService creates a study service. llm may be nil, in which case
// every method returns domain.ErrLLMUnavailable.
func NewStudyService(
	retrieval driving.RetrievalService, llm driven.LLMService, prompts driven.PromptStore,
) *StudyService {
	return &StudyService{
		retrieval: retrieval,
		llm:       llm,
		prompts:   prompts,
		now:       time.Now,
	}
}

// Summary condenses the session's content, read in chunk order.
func (s *StudyService) Summary(
	ctx context.Context, sessionID string, kind domain.SummaryKind, maxWords int,
) (*domain.Summary, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if kind == "" {
		kind = domain.SummaryComprehensive
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: summary type %q", domain.ErrInvalidInput, kind)
	}
	if maxWords <= 0 {
		maxWords = DefaultSummaryWords
	}

	chunks, err := s.sourceChunks(ctx, sessionID, summaryChunks)
	if err != nil {
		return nil, err
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(s.template(driven.PromptSummarySystem), kind)},
		{Role: "user", Content: fmt.Sprintf(s.template(driven.PromptSummaryUser),
			kind, maxWords, joinContent(chunks, summaryContentRunes))},
	}
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 800, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}
	text = strings.TrimSpace(text)

	return &domain.Summary{
		Text:         text,
		Kind:         kind,
		WordCount:    len(strings.Fields(text)),
		Sources:      ExtractSources(chunks),
		SourceChunks: chunkIDs(chunks),
		CreatedAt:    s.now(),
	}, nil
}

// Flashcards generates up to n cards, one source chunk per card.
func (s *StudyService) Flashcards(ctx context.Context, sessionID string, n int) (*domain.FlashcardSet, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	n, err := itemCount(n, DefaultFlashcards)
	if err != nil {
		return nil, err
	}

	chunks, err := s.sourceChunks(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: s.template(driven.PromptFlashcardsSystem)},
		{Role: "user", Content: fmt.Sprintf(s.template(driven.PromptFlashcardsUser),
			n, joinContent(chunks, itemContentRunes))},
	}
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 2000, Temperature: 0.4})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}

	cards, err := ParseFlashcards(reply)
	if err != nil {
		logger.Debug("unparseable flashcard reply for %s: %q", sessionID, reply)
		return nil, err
	}
	if len(cards) > n {
		cards = cards[:n]
	}

	return &domain.FlashcardSet{
		Cards:        cards,
		SourceChunks: chunkIDs(chunks),
		CreatedAt:    s.now(),
	}, nil
}

// Quiz generates up to n multiple-choice questions.
func (s *StudyService) Quiz(
	ctx context.Context, sessionID string, n int, difficulty domain.QuizDifficulty,
) (*domain.Quiz, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: difficulty %q", domain.ErrInvalidInput, difficulty)
	}
	n, err := itemCount(n, DefaultQuizQuestions)
	if err != nil {
		return nil, err
	}

	chunks, err := s.sourceChunks(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}

	messages := []driven.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(s.template(driven.PromptQuizSystem), n, difficulty)},
		{Role: "user", Content: fmt.Sprintf(s.template(driven.PromptQuizUser),
			n, joinContent(chunks, itemContentRunes))},
	}
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 2000, Temperature: 0.3})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	questions, err := ParseQuiz(reply)
	if err != nil {
		logger.Debug("unparseable quiz reply for %s: %q", sessionID, reply)
		return nil, err
	}
	if len(questions) > n {
		questions = questions[:n]
	}

	return &domain.Quiz{
		Questions:    questions,
		Difficulty:   difficulty,
		SourceChunks: chunkIDs(chunks),
		CreatedAt:    s.now(),
	}, nil
}

// Explain searches for concept and explains it from the retrieved chunks.
// An empty retrieval still produces an explanation from general knowledge.
func (s *StudyService) Explain(
	ctx context.Context, sessionID, concept string, style domain.ExplainStyle, topK int,
) (*domain.Explanation, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return nil, fmt.Errorf("%w: empty concept", domain.ErrInvalidInput)
	}
	if style == "" {
		style = domain.ExplainSimple
	}
	if !style.IsValid() {
		return nil, fmt.Errorf("%w: style %q", domain.ErrInvalidInput, style)
	}

	retrieval, err := s.retrieval.Search(ctx, sessionID, concept, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	chunks := retrieval.Chunks()

	messages := []driven.ChatMessage{
		{Role: "system", Content: s.template(driven.PromptExplainSystem)},
		{Role: "user", Content: fmt.Sprintf(s.template(driven.PromptExplainUser),
			concept, style, FormatContext(chunks))},
	}
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 1200, Temperature: 0.6})
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	return &domain.Explanation{
		Concept:    concept,
		Text:       text,
		Style:      style,
		Sources:    ExtractSources(chunks),
		Citations:  ExtractCitations(text),
		Confidence: Confidence(retrieval.Results, concept),
		Strategy:   retrieval.Strategy,
	}, nil
}

func (s *StudyService) template(name string) string {
	return loadPrompt(s.prompts, name)
}

// sourceChunks selects n chunks and fails when the session has none.
func (s *StudyService) sourceChunks(ctx context.Context, sessionID string, n int) ([]domain.Chunk, error) {
	chunks, err := s.retrieval.SelectForGeneration(ctx, sessionID, n)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing indexed for %s", domain.ErrIndexNotFound, sessionID)
	}
	return chunks, nil
}

func itemCount(n, def int) (int, error) {
	switch {
	case n == 0:
		return def, nil
	case n < 0 || n > MaxStudyItems:
		return 0, fmt.Errorf("%w: count must be between 1 and %d, got %d", domain.ErrInvalidInput, MaxStudyItems, n)
	}
	return n, nil
}

// joinContent concatenates chunk texts and cuts the result to maxRunes.
func joinContent(chunks []domain.Chunk, maxRunes int) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	content := []rune(strings.Join(texts, "\n\n"))
	if len(content) > maxRunes {
		content = content[:maxRunes]
	}
	return string(content)
}

func chunkIDs(chunks []domain.Chunk) []int {
	ids := make([]int, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids
}

// ParseFlashcards reads the first JSON array in reply. Cards without a
// question or answer are dropped and the rest are numbered from 1.
func ParseFlashcards(reply string) ([]domain.Flashcard, error) {
	span, ok := jsonSpan(reply, '[', ']')
	if !ok {
		return nil, fmt.Errorf("%w: no JSON array in flashcard reply", domain.ErrGeneration)
	}
	var raw []domain.Flashcard
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return nil, fmt.Errorf("%w: decode flashcards: %v", domain.ErrGeneration, err)
	}

	cards := make([]domain.Flashcard, 0, len(raw))
	for _, c := range raw {
		c.Question, c.Answer = strings.TrimSpace(c.Question), strings.TrimSpace(c.Answer)
		if c.Question == "" || c.Answer == "" {
			continue
		}
		c.ID = len(cards) + 1
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: flashcard reply held no cards", domain.ErrGeneration)
	}
	return cards, nil
}

// ParseQuiz reads a JSON object with a "questions" array, or a bare array,
// from reply. Questions without text or options are dropped.
func ParseQuiz(reply string) ([]domain.QuizQuestion, error) {
	var raw []domain.QuizQuestion
	if span, ok := jsonSpan(reply, '{', '}'); ok {
		var wrapper struct {
			Questions []domain.QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(span), &wrapper); err == nil {
			raw = wrapper.Questions
		}
	}
	if raw == nil {
		span, ok := jsonSpan(reply, '[', ']')
		if !ok {
			return nil, fmt.Errorf("%w: no JSON in quiz reply", domain.ErrGeneration)
		}
		if err := json.Unmarshal([]byte(span), &raw); err != nil {
			return nil, fmt.Errorf("%w: decode quiz: %v", domain.ErrGeneration, err)
		}
	}

	questions := make([]domain.QuizQuestion, 0, len(raw))
	for _, q := range raw {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) == 0 {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz reply held no questions", domain.ErrGeneration)
	}
	return questions, nil
}

// jsonSpan returns text from the first opening byte to the last closing byte.
func jsonSpan(text string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(text, opening)
	end := strings.LastIndexByte(text, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
