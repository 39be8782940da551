package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestExtractSources(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: 0, Type: domain.DocumentTypePDF, Source: "lecture.pdf", SourceInfo: domain.PageSource(2)},
		{ID: 1, Type: domain.DocumentTypePDF, Source: "lecture.pdf", SourceInfo: domain.PageSource(3)},
		{ID: 2, Type: domain.DocumentTypeYouTube, Source: "https://youtu.be/abc", SourceInfo: domain.TimestampSource("01:22")},
		{ID: 3, Type: domain.DocumentTypeText, Source: "lecture.pdf"},
	}

	got := ExtractSources(chunks)
	assert.Equal(t, []domain.SourceRef{
		{ChunkID: 0, Type: domain.DocumentTypePDF, Source: "lecture.pdf", Page: 2},
		{ChunkID: 2, Type: domain.DocumentTypeYouTube, Source: "https://youtu.be/abc", Timestamp: "01:22"},
		{ChunkID: 3, Type: domain.DocumentTypeText, Source: "lecture.pdf"},
	}, got)
}

func TestExtractSources_Empty(t *testing.T) {
	got := ExtractSources(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "none", text: "no markers here", want: []string{}},
		{
			name: "mixed and repeated",
			text: "See [source: page 3] and [timestamp: 01:05], again [source: page 3] and [source: page 12].",
			want: []string{"page 12", "page 3", "timestamp 01:05"},
		},
		{name: "long timestamp", text: "[timestamp: 125:09]", want: []string{"timestamp 125:09"}},
		{name: "malformed", text: "[source: page x] [timestamp: 1:5]", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCitations(tt.text))
		})
	}
}

func TestConfidence(t *testing.T) {
	res := func(scores ...float64) []domain.SearchResult {
		out := make([]domain.SearchResult, len(scores))
		for i, s := range scores {
			out[i] = domain.SearchResult{Score: s}
		}
		return out
	}

	assert.Zero(t, Confidence(nil, "q"))
	assert.Equal(t, 0.5, Confidence(res(0.4, 0.6), "q"))
	assert.Equal(t, 0.67, Confidence(res(0.5, 0.7, 0.8), "q"))
	assert.Equal(t, 1.0, Confidence(res(1.2, 1.4), "q"))
	assert.Zero(t, Confidence(res(-0.3), "q"))
	assert.Zero(t, Confidence(res(math.NaN()), "q"))

	svc := NewCitationService()
	assert.Equal(t, 0.5, svc.Confidence(res(0.5), "q"))
}
