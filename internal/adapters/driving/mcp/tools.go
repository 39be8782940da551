package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	SessionID string `json:"session_id" jsonschema:"the study session to search"`
	Query     string `json:"query" jsonschema:"the question or phrase to look for"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Strategy   string               `json:"strategy"`
	Results    []SearchResultOutput `json:"results"`
	Sources    []domain.SourceRef   `json:"sources"`
	Confidence float64              `json:"confidence"`
	Count      int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID int     `json:"chunk_id"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"similarity_score"`
	Match   string  `json:"match,omitempty"`
	Source  string  `json:"source"`
	Marker  string  `json:"marker,omitempty"`
	Text    string  `json:"text"`
}

// SelectInput is the input schema for the select_chunks tool.
type SelectInput struct {
	SessionID string `json:"session_id" jsonschema:"the study session to draw from"`
	NumItems  int    `json:"num_items,omitempty" jsonschema:"number of chunks to select (default 10)"`
}

// SelectOutput is the output schema for the select_chunks tool.
type SelectOutput struct {
	Chunks []SearchResultOutput `json:"chunks"`
	Count  int                  `json:"count"`
}

// CitationsInput is the input schema for the extract_citations tool.
type CitationsInput struct {
	Text string `json:"text" jsonschema:"text containing [source: page N] or [timestamp: MM:SS] markers"`
}

// CitationsOutput is the output schema for the extract_citations tool.
type CitationsOutput struct {
	Citations []string `json:"citations"`
}

// StatsInput is the input schema for the index_stats tool.
type StatsInput struct {
	SessionID string `json:"session_id" jsonschema:"the study session to inspect"`
}

// FlashcardsInput is the input schema for the generate_flashcards tool.
type FlashcardsInput struct {
	SessionID string `json:"session_id" jsonschema:"the study session to draw from"`
	Count     int    `json:"count,omitempty" jsonschema:"number of cards to generate (default 10, max 50)"`
}

// FlashcardsOutput is the output schema for the generate_flashcards tool.
type FlashcardsOutput struct {
	Cards        []domain.Flashcard `json:"flashcards"`
	SourceChunks []int              `json:"source_chunks"`
	Count        int                `json:"count"`
}

// QuizInput is the input schema for the generate_quiz tool.
type QuizInput struct {
	SessionID  string `json:"session_id" jsonschema:"the study session to draw from"`
	Count      int    `json:"count,omitempty" jsonschema:"number of questions to generate (default 5, max 50)"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"easy, medium, hard or mixed (default medium)"`
}

// QuizOutput is the output schema for the generate_quiz tool.
type QuizOutput struct {
	Questions    []domain.QuizQuestion `json:"questions"`
	Difficulty   string                `json:"difficulty"`
	SourceChunks []int                 `json:"source_chunks"`
	Count        int                   `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search a study session's documents, with sources and a confidence score",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select_chunks",
		Description: "Pick chunks from a session to seed summaries, flashcards or quizzes",
	}, s.handleSelect)

	if s.ports.Citation != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "extract_citations",
			Description: "List the distinct page and timestamp markers cited in a piece of text",
		}, s.handleCitations)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_stats",
			Description: "Report the embedding model, dimension and chunk count of a session's index",
		}, s.handleStats)
	}

	if s.ports.Study != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_flashcards",
			Description: "Generate question and answer flashcards from a session's documents",
		}, s.handleFlashcards)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_quiz",
			Description: "Generate a multiple-choice quiz from a session's documents",
		}, s.handleQuiz)
	}
}

// handleFlashcards handles the generate_flashcards tool invocation.
func (s *Server) handleFlashcards(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FlashcardsInput,
) (*mcp.CallToolResult, FlashcardsOutput, error) {
	set, err := s.ports.Study.Flashcards(ctx, input.SessionID, input.Count)
	if err != nil {
		return nil, FlashcardsOutput{}, err
	}
	return nil, FlashcardsOutput{
		Cards:        set.Cards,
		SourceChunks: set.SourceChunks,
		Count:        len(set.Cards),
	}, nil
}

// handleQuiz handles the generate_quiz tool invocation.
func (s *Server) handleQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	quiz, err := s.ports.Study.Quiz(ctx, input.SessionID, input.Count, domain.QuizDifficulty(input.Difficulty))
	if err != nil {
		return nil, QuizOutput{}, err
	}
	return nil, QuizOutput{
		Questions:    quiz.Questions,
		Difficulty:   string(quiz.Difficulty),
		SourceChunks: quiz.SourceChunks,
		Count:        len(quiz.Questions),
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	retrieval, err := s.ports.Retrieval.Search(ctx, input.SessionID, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Strategy: string(retrieval.Strategy),
		Results:  make([]SearchResultOutput, len(retrieval.Results)),
		Sources:  []domain.SourceRef{},
		Count:    len(retrieval.Results),
	}
	for i := range retrieval.Results {
		output.Results[i] = toOutput(&retrieval.Results[i])
	}
	if s.ports.Citation != nil {
		if sources := s.ports.Citation.ExtractSources(retrieval.Chunks()); sources != nil {
			output.Sources = sources
		}
		output.Confidence = s.ports.Citation.Confidence(retrieval.Results, input.Query)
	}

	return nil, output, nil
}

// handleSelect handles the select_chunks tool invocation.
func (s *Server) handleSelect(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SelectInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	n := input.NumItems
	if n <= 0 {
		n = 10
	}

	chunks, err := s.ports.Retrieval.SelectForGeneration(ctx, input.SessionID, n)
	if err != nil {
		return nil, SelectOutput{}, err
	}

	output := SelectOutput{
		Chunks: make([]SearchResultOutput, len(chunks)),
		Count:  len(chunks),
	}
	for i := range chunks {
		output.Chunks[i] = toOutput(&domain.SearchResult{Chunk: chunks[i]})
	}
	return nil, output, nil
}

// handleCitations handles the extract_citations tool invocation.
func (s *Server) handleCitations(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CitationsInput,
) (*mcp.CallToolResult, CitationsOutput, error) {
	citations := s.ports.Citation.ExtractCitations(input.Text)
	if citations == nil {
		citations = []string{}
	}
	return nil, CitationsOutput{Citations: citations}, nil
}

// handleStats handles the index_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, domain.IndexStats, error) {
	stats, err := s.ports.Index.Stats(ctx, input.SessionID)
	if err != nil {
		return nil, domain.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return nil, *stats, nil
}

func toOutput(r *domain.SearchResult) SearchResultOutput {
	return SearchResultOutput{
		ChunkID: r.ID,
		Rank:    r.Rank,
		Score:   r.Score,
		Match:   string(r.Match),
		Source:  r.Source,
		Marker:  r.SourceInfo.Marker(),
		Text:    r.Text,
	}
}
