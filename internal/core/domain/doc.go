// Package domain defines the core entities of the session document pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Session: an isolated unit of ingested content and its index
//   - DocumentDescriptor: the audit trail of what was ingested
//   - Chunk: an overlap-aware slice of text with a tagged SourceInfo
//   - SessionIndex: vectors aligned with chunk metadata and provenance
//   - SearchResult / Retrieval: ranked chunks and the strategy that found them
//   - SourceRef / Answer: attributed output for downstream consumers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
