package domain

// MatchKind records which retrieval stage produced a result.
type MatchKind string

// Retrieval stages.
const (
	MatchSemantic MatchKind = "semantic"
	MatchKeyword  MatchKind = "keyword"
)

// SearchResult is a chunk ranked against a query.
type SearchResult struct {
	Chunk

	// Score is the cosine similarity. Keyword matches carry 0.
	Score float64 `json:"similarity_score"`

	// Rank is the 1-based position in the returned list.
	Rank int `json:"rank"`

	// Match is the stage that produced the result.
	Match MatchKind `json:"match"`
}

// RetrievalStrategy is the outcome of a two-stage search.
type RetrievalStrategy string

// Retrieval outcomes.
const (
	// StrategyNone means the session has neither an index nor stored chunks.
	StrategyNone RetrievalStrategy = "none"

	// StrategySemantic means results came from vector similarity.
	StrategySemantic RetrievalStrategy = "semantic"

	// StrategyKeyword means the semantic stage produced nothing and the
	// keyword scan ran instead.
	StrategyKeyword RetrievalStrategy = "keyword"
)

// Retrieval is the explicit result of a search.
type Retrieval struct {
	// Results are ordered by rank.
	Results []SearchResult

	// Strategy is the stage that produced Results.
	Strategy RetrievalStrategy

	// FallbackCause is the semantic-stage error when the keyword stage ran
	// because of one. Nil when the semantic stage simply had no vectors.
	FallbackCause error
}

// Empty returns true if nothing was retrieved.
func (r *Retrieval) Empty() bool {
	return r == nil || len(r.Results) == 0
}

// Chunks returns the chunks of the results in rank order.
func (r *Retrieval) Chunks() []Chunk {
	if r == nil {
		return nil
	}
	chunks := make([]Chunk, len(r.Results))
	for i, res := range r.Results {
		chunks[i] = res.Chunk
	}
	return chunks
}
