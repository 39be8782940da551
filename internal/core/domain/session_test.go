package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		input    DocumentType
		expected bool
	}{
		{"pdf", DocumentTypePDF, true},
		{"text", DocumentTypeText, true},
		{"youtube", DocumentTypeYouTube, true},
		{"empty", DocumentType(""), false},
		{"unknown", DocumentType("docx"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.IsValid())
		})
	}
}

func TestSession_ChunkCount(t *testing.T) {
	s := Session{
		ID:        "session_20240101_120000_abcd1234",
		CreatedAt: time.Now(),
		Documents: []DocumentDescriptor{
			{Type: DocumentTypePDF, Source: "a.pdf", Pages: 3, ChunkCount: 4},
			{Type: DocumentTypeText, Source: "notes", ChunkCount: 2},
		},
	}

	assert.Equal(t, 6, s.ChunkCount())
	assert.Equal(t, 0, (&Session{}).ChunkCount())
}
