// Package mcp exposes session search and citation tools over the Model
// Context Protocol so AI assistants can study from a session's documents.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
