package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
	"github.com/custodia-labs/kensho/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService runs two-stage retrieval: semantic similarity against the
// session index, then a keyword scan when the semantic stage has no vectors
// or fails. The keyword scan falls back to the session's stored chunks when
// the index holds none.
type RetrievalService struct {
	indexes  driving.IndexService
	embedder *EmbeddingProvider
	newIndex driven.VectorIndexFactory
	sessions driven.SessionStore
}

// NewRetrievalService creates a retrieval service. sessions may be nil; it
// supplies the keyword corpus when the index is missing, empty or unreadable.
func NewRetrievalService(
	indexes driving.IndexService,
	embedder *EmbeddingProvider,
	newIndex driven.VectorIndexFactory,
	sessions driven.SessionStore,
) *RetrievalService {
	return &RetrievalService{
		indexes:  indexes,
		embedder: embedder,
		newIndex: newIndex,
		sessions: sessions,
	}
}

// Search returns at most topK results. topK <= 0 uses domain.DefaultTopK.
func (s *RetrievalService) Search(ctx context.Context, sessionID, query string, topK int) (*domain.Retrieval, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.Retrieval{Strategy: domain.StrategyNone}, nil
	}

	idx, err := s.indexes.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		stored := s.storedChunks(ctx, sessionID)
		if len(stored) == 0 {
			logger.Debug("no index for %s", sessionID)
			return &domain.Retrieval{Strategy: domain.StrategyNone}, nil
		}
		logger.Debug("no index for %s, using keyword search over stored chunks", sessionID)
		return &domain.Retrieval{
			Results:  keywordSearch(stored, query, topK),
			Strategy: domain.StrategyKeyword,
		}, nil
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("index for %s unusable, using keyword search: %v", sessionID, err)
		return &domain.Retrieval{
			Results:       keywordSearch(s.storedChunks(ctx, sessionID), query, topK),
			Strategy:      domain.StrategyKeyword,
			FallbackCause: err,
		}, nil
	}

	results, err := s.semanticSearch(ctx, idx, query, topK)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil && len(results) > 0 {
		return &domain.Retrieval{Results: results, Strategy: domain.StrategySemantic}, nil
	}
	if err != nil {
		logger.Warn("semantic search failed for %s, using keyword search: %v", sessionID, err)
	} else {
		logger.Debug("index for %s is empty, using keyword search", sessionID)
	}

	corpus := idx.Chunks
	if len(corpus) == 0 {
		corpus = s.storedChunks(ctx, sessionID)
	}
	return &domain.Retrieval{
		Results:       keywordSearch(corpus, query, topK),
		Strategy:      domain.StrategyKeyword,
		FallbackCause: err,
	}, nil
}

func (s *RetrievalService) semanticSearch(
	ctx context.Context, idx *domain.SessionIndex, query string, topK int,
) ([]domain.SearchResult, error) {
	if len(idx.Vectors) == 0 {
		return nil, nil
	}

	qv, err := s.embedder.EmbedQuery(ctx, query, idx.Provenance)
	if err != nil {
		return nil, err
	}

	vi := s.newIndex(idx.Provenance.Dimension)
	defer vi.Close()
	for i, v := range idx.Vectors {
		if err := vi.Add(ctx, idx.Chunks[i].ID, v); err != nil {
			return nil, fmt.Errorf("%w: vector %d: %w", domain.ErrIndexCorruption, i, err)
		}
	}

	hits, err := vi.Search(ctx, qv, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.ChunkID < 0 || h.ChunkID >= len(idx.Chunks) {
			return nil, fmt.Errorf("%w: hit for unknown chunk %d", domain.ErrIndexCorruption, h.ChunkID)
		}
		results = append(results, domain.SearchResult{
			Chunk: idx.Chunks[h.ChunkID],
			Score: h.Similarity,
			Rank:  len(results) + 1,
			Match: domain.MatchSemantic,
		})
	}
	return results, nil
}

func (s *RetrievalService) storedChunks(ctx context.Context, sessionID string) []domain.Chunk {
	if s.sessions == nil {
		return nil
	}
	chunks, err := s.sessions.GetChunks(ctx, sessionID)
	if err != nil {
		logger.Debug("no stored chunks for %s: %v", sessionID, err)
		return nil
	}
	return chunks
}

// keywordSearch returns chunks containing the lowercase query, shortest first.
func keywordSearch(chunks []domain.Chunk, query string, topK int) []domain.SearchResult {
	needle := strings.ToLower(query)

	var matches []domain.Chunk
	for _, c := range chunks {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			matches = append(matches, c)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		li, lj := len([]rune(matches[i].Text)), len([]rune(matches[j].Text))
		if li != lj {
			return li < lj
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, len(matches))
	for i, c := range matches {
		results[i] = domain.SearchResult{Chunk: c, Rank: i + 1, Match: domain.MatchKeyword}
	}
	return results
}

// SelectDiverse returns the numItems highest-scoring results of pool, ties by
// chunk id. A pool no larger than numItems is returned unchanged.
func (s *RetrievalService) SelectDiverse(pool []domain.SearchResult, numItems int) []domain.SearchResult {
	return selectDiverse(pool, numItems)
}

func selectDiverse(pool []domain.SearchResult, numItems int) []domain.SearchResult {
	if numItems <= 0 {
		return []domain.SearchResult{}
	}
	if len(pool) <= numItems {
		return pool
	}
	sorted := make([]domain.SearchResult, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[:numItems]
}

// SelectForGeneration picks numItems chunks from the session's index to seed
// summaries, flashcards or quizzes.
func (s *RetrievalService) SelectForGeneration(
	ctx context.Context, sessionID string, numItems int,
) ([]domain.Chunk, error) {
	chunks, err := s.indexes.AllChunks(ctx, sessionID)
	if errors.Is(err, domain.ErrIndexNotFound) {
		return []domain.Chunk{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select chunks for %s: %w", sessionID, err)
	}

	pool := make([]domain.SearchResult, len(chunks))
	for i, c := range chunks {
		pool[i] = domain.SearchResult{Chunk: c}
	}
	selected := selectDiverse(pool, numItems)

	out := make([]domain.Chunk, len(selected))
	for i, r := range selected {
		out[i] = r.Chunk
	}
	return out, nil
}
