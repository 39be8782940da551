package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for kensho resources.
	uriScheme = "kensho://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "List of study sessions",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}",
		Name:        "session",
		Description: "Documents ingested into a study session",
		MIMEType:    "application/json",
	}, s.handleSessionResource)
}

type sessionInfo struct {
	ID         string         `json:"id"`
	CreatedAt  string         `json:"created_at"`
	ChunkCount int            `json:"chunk_count"`
	Documents  []documentInfo `json:"documents,omitempty"`
}

type documentInfo struct {
	Type       string `json:"type"`
	Source     string `json:"source"`
	Pages      int    `json:"pages,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

func toSessionInfo(session *domain.Session, withDocuments bool) sessionInfo {
	info := sessionInfo{
		ID:         session.ID,
		CreatedAt:  session.CreatedAt.Format(time.RFC3339),
		ChunkCount: session.ChunkCount(),
	}
	if withDocuments {
		info.Documents = make([]documentInfo, len(session.Documents))
		for i, d := range session.Documents {
			info.Documents[i] = documentInfo{
				Type:       string(d.Type),
				Source:     d.Source,
				Pages:      d.Pages,
				ChunkCount: d.ChunkCount,
			}
		}
	}
	return info
}

// handleSessionsResource returns all sessions.
func (s *Server) handleSessionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return jsonResult(req.Params.URI, []sessionInfo{})
	}

	sessions, err := s.ports.Session.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	infos := make([]sessionInfo, len(sessions))
	for i := range sessions {
		infos[i] = toSessionInfo(&sessions[i], false)
	}
	return jsonResult(req.Params.URI, infos)
}

// handleSessionResource returns one session with its documents.
func (s *Server) handleSessionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Session == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// kensho://sessions/{sessionId}
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	session, err := s.ports.Session.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return jsonResult(req.Params.URI, toSessionInfo(session, true))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like kensho://sessions/{sessionId}.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
