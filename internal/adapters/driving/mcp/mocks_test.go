package mcp

import (
	"context"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	retrieval *domain.Retrieval
	chunks    []domain.Chunk
	err       error

	lastTopK int
	lastN    int
}

func (m *mockRetrievalService) Search(_ context.Context, _, _ string, topK int) (*domain.Retrieval, error) {
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.retrieval == nil {
		return &domain.Retrieval{Strategy: domain.StrategyNone}, nil
	}
	return m.retrieval, nil
}

func (m *mockRetrievalService) SelectDiverse(pool []domain.SearchResult, numItems int) []domain.SearchResult {
	if len(pool) <= numItems {
		return pool
	}
	return pool[:numItems]
}

func (m *mockRetrievalService) SelectForGeneration(_ context.Context, _ string, numItems int) ([]domain.Chunk, error) {
	m.lastN = numItems
	return m.chunks, m.err
}

// mockCitationService is a mock implementation of driving.CitationService.
type mockCitationService struct {
	sources    []domain.SourceRef
	citations  []string
	confidence float64
}

func (m *mockCitationService) ExtractSources(_ []domain.Chunk) []domain.SourceRef {
	return m.sources
}

func (m *mockCitationService) ExtractCitations(_ string) []string {
	return m.citations
}

func (m *mockCitationService) Confidence(_ []domain.SearchResult, _ string) float64 {
	return m.confidence
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	sessions []domain.Session
	session  *domain.Session
	err      error
}

func (m *mockSessionService) Create(_ context.Context) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) Ensure(_ context.Context, _ string) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) Get(_ context.Context, _ string) (*domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) List(_ context.Context) ([]domain.Session, error) {
	return m.sessions, m.err
}

func (m *mockSessionService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockIndexService) Build(_ context.Context, _ string, _ []domain.Chunk) error {
	return m.err
}

func (m *mockIndexService) Load(_ context.Context, _ string) (*domain.SessionIndex, error) {
	return nil, m.err
}

func (m *mockIndexService) Delete(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockIndexService) Rebuild(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexService) Stats(_ context.Context, _ string) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) ListIndexed(_ context.Context) ([]domain.IndexStats, error) {
	return nil, m.err
}

func (m *mockIndexService) AllChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

// mockStudyService is a mock implementation of driving.StudyService.
type mockStudyService struct {
	cards     *domain.FlashcardSet
	quiz      *domain.Quiz
	err       error
	lastCount int
	lastLevel domain.QuizDifficulty
}

func (m *mockStudyService) Summary(_ context.Context, _ string, _ domain.SummaryKind, _ int) (*domain.Summary, error) {
	return nil, m.err
}

func (m *mockStudyService) Flashcards(_ context.Context, _ string, n int) (*domain.FlashcardSet, error) {
	m.lastCount = n
	return m.cards, m.err
}

func (m *mockStudyService) Quiz(
	_ context.Context, _ string, n int, difficulty domain.QuizDifficulty,
) (*domain.Quiz, error) {
	m.lastCount, m.lastLevel = n, difficulty
	return m.quiz, m.err
}

func (m *mockStudyService) Explain(
	_ context.Context, _, _ string, _ domain.ExplainStyle, _ int,
) (*domain.Explanation, error) {
	return nil, m.err
}
