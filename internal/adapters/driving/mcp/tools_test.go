package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results with attribution", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			retrieval: &domain.Retrieval{
				Strategy: domain.StrategySemantic,
				Results: []domain.SearchResult{
					{
						Chunk: domain.Chunk{
							ID:         3,
							Text:       "Mitochondria produce ATP.",
							Type:       domain.DocumentTypePDF,
							Source:     "biology.pdf",
							SourceInfo: domain.PageSource(4),
						},
						Score: 0.91,
						Rank:  1,
						Match: domain.MatchSemantic,
					},
				},
			},
		}
		mockCitation := &mockCitationService{
			sources:    []domain.SourceRef{{ChunkID: 3, Type: domain.DocumentTypePDF, Source: "biology.pdf", Page: 4}},
			confidence: 0.91,
		}

		server, err := NewServer(&Ports{Retrieval: mockRetrieval, Citation: mockCitation})
		require.NoError(t, err)

		input := SearchInput{SessionID: "s1", Query: "what makes ATP", TopK: 3}
		_, output, err := server.handleSearch(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 3, mockRetrieval.lastTopK)
		assert.Equal(t, "semantic", output.Strategy)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, 3, output.Results[0].ChunkID)
		assert.Equal(t, 1, output.Results[0].Rank)
		assert.Equal(t, "biology.pdf", output.Results[0].Source)
		assert.Equal(t, "[source: page 4]", output.Results[0].Marker)
		assert.Equal(t, 0.91, output.Results[0].Score)
		assert.Equal(t, mockCitation.sources, output.Sources)
		assert.Equal(t, 0.91, output.Confidence)
	})

	t.Run("no index returns empty results", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{SessionID: "s1", Query: "x"})

		require.NoError(t, err)
		assert.Equal(t, "none", output.Strategy)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Results)
		assert.NotNil(t, output.Sources)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			err: errors.New("search failed"),
		}

		server, err := NewServer(&Ports{Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{SessionID: "s1", Query: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "search failed")
	})
}

func TestServer_handleSelect(t *testing.T) {
	ctx := context.Background()

	t.Run("default count is 10", func(t *testing.T) {
		mockRetrieval := &mockRetrievalService{
			chunks: []domain.Chunk{
				{ID: 0, Text: "first", Source: "notes.txt"},
				{ID: 1, Text: "second", Source: "lecture", SourceInfo: domain.TimestampSource("01:05")},
			},
		}
		server, err := NewServer(&Ports{Retrieval: mockRetrieval})
		require.NoError(t, err)

		_, output, err := server.handleSelect(ctx, nil, SelectInput{SessionID: "s1"})

		require.NoError(t, err)
		assert.Equal(t, 10, mockRetrieval.lastN)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "[timestamp: 01:05]", output.Chunks[1].Marker)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{err: errors.New("boom")}})
		require.NoError(t, err)

		_, _, err = server.handleSelect(ctx, nil, SelectInput{SessionID: "s1", NumItems: 2})
		assert.Error(t, err)
	})
}

func TestServer_handleCitations(t *testing.T) {
	t.Run("returns citations", func(t *testing.T) {
		mockCitation := &mockCitationService{citations: []string{"page 2"}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Citation: mockCitation})
		require.NoError(t, err)

		_, output, err := server.handleCitations(context.Background(), nil, CitationsInput{Text: "see [source: page 2]"})

		require.NoError(t, err)
		assert.Equal(t, []string{"page 2"}, output.Citations)
	})

	t.Run("no citations is an empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Citation: &mockCitationService{}})
		require.NoError(t, err)

		_, output, err := server.handleCitations(context.Background(), nil, CitationsInput{Text: "plain"})

		require.NoError(t, err)
		assert.NotNil(t, output.Citations)
		assert.Empty(t, output.Citations)
	})
}

func TestServer_handleStats(t *testing.T) {
	t.Run("returns stats", func(t *testing.T) {
		stats := &domain.IndexStats{SessionID: "s1", Exists: true, Model: "hashing-384", Dimension: 384, ChunkCount: 7}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Index: &mockIndexService{stats: stats}})
		require.NoError(t, err)

		_, output, err := server.handleStats(context.Background(), nil, StatsInput{SessionID: "s1"})

		require.NoError(t, err)
		assert.Equal(t, *stats, output)
	})

	t.Run("wraps errors", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Index:     &mockIndexService{err: domain.ErrIndexCorruption},
		})
		require.NoError(t, err)

		_, _, err = server.handleStats(context.Background(), nil, StatsInput{SessionID: "s1"})
		assert.ErrorIs(t, err, domain.ErrIndexCorruption)
	})
}

func TestServer_handleFlashcards(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated cards", func(t *testing.T) {
		study := &mockStudyService{cards: &domain.FlashcardSet{
			Cards:        []domain.Flashcard{{ID: 1, Question: "What makes ATP?", Answer: "Mitochondria"}},
			SourceChunks: []int{3},
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Study: study})
		require.NoError(t, err)

		_, output, err := server.handleFlashcards(ctx, nil, FlashcardsInput{SessionID: "s1", Count: 4})

		require.NoError(t, err)
		assert.Equal(t, 4, study.lastCount)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "Mitochondria", output.Cards[0].Answer)
		assert.Equal(t, []int{3}, output.SourceChunks)
	})

	t.Run("propagates generation errors", func(t *testing.T) {
		study := &mockStudyService{err: domain.ErrLLMUnavailable}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Study: study})
		require.NoError(t, err)

		_, _, err = server.handleFlashcards(ctx, nil, FlashcardsInput{SessionID: "s1"})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestServer_handleQuiz(t *testing.T) {
	study := &mockStudyService{quiz: &domain.Quiz{
		Questions: []domain.QuizQuestion{{
			Question:      "What makes ATP?",
			Options:       []string{"Mitochondria", "Ribosomes"},
			CorrectAnswer: "A",
		}},
		Difficulty:   domain.DifficultyHard,
		SourceChunks: []int{3, 4},
	}}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Study: study})
	require.NoError(t, err)

	_, output, err := server.handleQuiz(context.Background(), nil,
		QuizInput{SessionID: "s1", Count: 2, Difficulty: "hard"})

	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyHard, study.lastLevel)
	assert.Equal(t, 2, study.lastCount)
	assert.Equal(t, "hard", output.Difficulty)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, domain.AnswerKey("A"), output.Questions[0].CorrectAnswer)
}
