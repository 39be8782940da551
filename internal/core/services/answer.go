package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const noContext = "No specific context from the documents was found for this question."

// AnswerService generates grounded answers and attributes them.
type AnswerService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	prompts   driven.PromptStore
	opts      driven.ChatOptions
}

// NewAnswerService creates an answer service. llm may be nil, in which case
// Ask returns domain.ErrLLMUnavailable. prompts may be nil to use the
// built-in templates.
func NewAnswerService(
	retrieval driving.RetrievalService, llm driven.LLMService, prompts driven.PromptStore,
) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		llm:       llm,
		prompts:   prompts,
		opts:      driven.ChatOptions{MaxTokens: 1500, Temperature: 0.5},
	}
}

// Ask retrieves context for question, asks the LLM and attributes the reply.
func (s *AnswerService) Ask(ctx context.Context, sessionID, question string, topK int) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	retrieval, err := s.retrieval.Search(ctx, sessionID, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	chunks := retrieval.Chunks()

	system, user := s.template(driven.PromptAnswerSystem), s.template(driven.PromptAnswerUser)
	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(user, FormatContext(chunks), question)},
	}

	text, err := s.llm.Chat(ctx, messages, s.opts)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:       text,
		Sources:    ExtractSources(chunks),
		Citations:  ExtractCitations(text),
		Confidence: Confidence(retrieval.Results, question),
		Strategy:   retrieval.Strategy,
	}, nil
}

func (s *AnswerService) template(name string) string {
	return loadPrompt(s.prompts, name)
}

// FormatContext renders chunks as blank-line separated blocks, each headed
// by its location marker when it has one.
func FormatContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return noContext
	}
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		if marker := c.SourceInfo.Marker(); marker != "" {
			blocks[i] = marker + "\n" + c.Text
		} else {
			blocks[i] = c.Text
		}
	}
	return strings.Join(blocks, "\n\n")
}
