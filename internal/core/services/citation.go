package services

import (
	"math"
	"regexp"
	"sort"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
)

// Ensure CitationService implements the interface.
var _ driving.CitationService = (*CitationService)(nil)

var citationPattern = regexp.MustCompile(`\[source: page (\d+)\]|\[timestamp: (\d{2,}:\d{2})\]`)

// CitationService attributes chunks and answers. It holds no state.
type CitationService struct{}

// NewCitationService creates a citation service.
func NewCitationService() *CitationService {
	return &CitationService{}
}

// ExtractSources implements driving.CitationService.
func (CitationService) ExtractSources(chunks []domain.Chunk) []domain.SourceRef {
	return ExtractSources(chunks)
}

// ExtractCitations implements driving.CitationService.
func (CitationService) ExtractCitations(text string) []string {
	return ExtractCitations(text)
}

// Confidence implements driving.CitationService.
func (CitationService) Confidence(results []domain.SearchResult, query string) float64 {
	return Confidence(results, query)
}

// ExtractSources returns one descriptor per (type, source) pair, in first-seen
// order. The descriptor carries the first chunk's id and location.
func ExtractSources(chunks []domain.Chunk) []domain.SourceRef {
	type key struct {
		t domain.DocumentType
		s string
	}
	seen := make(map[key]bool)
	refs := make([]domain.SourceRef, 0)

	for _, c := range chunks {
		k := key{c.Type, c.Source}
		if seen[k] {
			continue
		}
		seen[k] = true

		ref := domain.SourceRef{ChunkID: c.ID, Type: c.Type, Source: c.Source}
		if p, ok := c.SourceInfo.Page(); ok {
			ref.Page = p
		}
		if ts, ok := c.SourceInfo.Timestamp(); ok {
			ref.Timestamp = ts
		}
		refs = append(refs, ref)
	}
	return refs
}

// ExtractCitations returns the distinct markers in text as "page N" or
// "timestamp MM:SS", sorted.
func ExtractCitations(text string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)

	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		var c string
		if m[1] != "" {
			c = "page " + m[1]
		} else {
			c = "timestamp " + m[2]
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Confidence is the mean result score clamped to [0, 1] and rounded to two
// decimals. No results, or a non-finite mean, yields 0.
func Confidence(results []domain.SearchResult, _ string) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	mean := sum / float64(len(results))
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0
	}
	mean = math.Max(0, math.Min(1, mean))
	return math.Round(mean*100) / 100
}
