package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid session URI",
			uri:      "kensho://sessions/session_20240101_120000_abcd1234",
			expected: "session_20240101_120000_abcd1234",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/s1",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "kensho://sessions/s1/documents",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractSessionID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:        "s1",
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Documents: []domain.DocumentDescriptor{
			{Type: domain.DocumentTypePDF, Source: "biology.pdf", Pages: 12, ChunkCount: 30},
			{Type: domain.DocumentTypeText, Source: "notes.md", ChunkCount: 4},
		},
	}
}

func TestServer_handleSessionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil session service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("kensho://sessions"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns sessions successfully", func(t *testing.T) {
		mockSession := &mockSessionService{sessions: []domain.Session{*testSession()}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Session: mockSession})
		require.NoError(t, err)

		result, err := server.handleSessionsResource(ctx, makeReadResourceRequest("kensho://sessions"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []sessionInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "s1", infos[0].ID)
		assert.Equal(t, 34, infos[0].ChunkCount)
		assert.Equal(t, "2024-03-01T09:30:00Z", infos[0].CreatedAt)
		assert.Empty(t, infos[0].Documents)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockSession := &mockSessionService{err: errors.New("database error")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Session: mockSession})
		require.NoError(t, err)

		_, err = server.handleSessionsResource(ctx, makeReadResourceRequest("kensho://sessions"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sessions")
	})
}

func TestServer_handleSessionResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil session service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("kensho://sessions/s1"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Session: &mockSessionService{}})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("kensho://other/s1"))
		require.Error(t, err)
	})

	t.Run("unknown session returns not found", func(t *testing.T) {
		mockSession := &mockSessionService{err: fmt.Errorf("session s9: %w", domain.ErrNotFound)}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Session: mockSession})
		require.NoError(t, err)

		_, err = server.handleSessionResource(ctx, makeReadResourceRequest("kensho://sessions/s9"))
		require.Error(t, err)
	})

	t.Run("returns session with documents", func(t *testing.T) {
		mockSession := &mockSessionService{session: testSession()}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Session: mockSession})
		require.NoError(t, err)

		result, err := server.handleSessionResource(ctx, makeReadResourceRequest("kensho://sessions/s1"))
		require.NoError(t, err)

		var info sessionInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		require.Len(t, info.Documents, 2)
		assert.Equal(t, "pdf", info.Documents[0].Type)
		assert.Equal(t, 12, info.Documents[0].Pages)
		assert.Equal(t, "notes.md", info.Documents[1].Source)
	})
}
