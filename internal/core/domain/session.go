package domain

import "time"

// DocumentType identifies the kind of ingested material.
type DocumentType string

// Supported document types.
const (
	DocumentTypePDF     DocumentType = "pdf"
	DocumentTypeText    DocumentType = "text"
	DocumentTypeYouTube DocumentType = "youtube"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypeText, DocumentTypeYouTube:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// Session is an isolated unit of ingested content and its retrievable index.
// A session exclusively owns its documents and its index.
type Session struct {
	// ID is the unique session identifier.
	ID string

	// CreatedAt is when the session was first referenced.
	CreatedAt time.Time

	// Documents is the append-only audit trail of ingested material.
	Documents []DocumentDescriptor

	// IndexPath locates the session's index artifacts in the index store.
	IndexPath string
}

// ChunkCount returns the total number of chunks across all documents.
func (s *Session) ChunkCount() int {
	total := 0
	for _, d := range s.Documents {
		total += d.ChunkCount
	}
	return total
}

// DocumentDescriptor records one ingested document.
type DocumentDescriptor struct {
	// Type is the document type.
	Type DocumentType

	// Source is the original identifier (filename or URL).
	Source string

	// Pages is the number of pages for page-oriented documents, zero otherwise.
	Pages int

	// ChunkCount is the number of chunks the document produced.
	ChunkCount int

	// ProcessedAt is when ingestion completed.
	ProcessedAt time.Time
}
