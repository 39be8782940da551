package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceKind tags the variant held by a SourceInfo.
type SourceKind int

// SourceInfo variants.
const (
	SourceNone SourceKind = iota
	SourcePage
	SourceTimestamp
)

// SourceInfo locates a chunk within its originating document.
// It holds either a page number, a MM:SS timestamp, or nothing.
// The zero value is SourceNone.
type SourceInfo struct {
	kind      SourceKind
	page      int
	timestamp string
}

// PageSource returns a SourceInfo pointing at page p.
func PageSource(p int) SourceInfo {
	return SourceInfo{kind: SourcePage, page: p}
}

// TimestampSource returns a SourceInfo pointing at a MM:SS timestamp.
func TimestampSource(ts string) SourceInfo {
	return SourceInfo{kind: SourceTimestamp, timestamp: ts}
}

// Kind returns the variant tag.
func (s SourceInfo) Kind() SourceKind {
	return s.kind
}

// Page returns the page number and whether the variant is SourcePage.
func (s SourceInfo) Page() (int, bool) {
	return s.page, s.kind == SourcePage
}

// Timestamp returns the timestamp and whether the variant is SourceTimestamp.
func (s SourceInfo) Timestamp() (string, bool) {
	return s.timestamp, s.kind == SourceTimestamp
}

// IsZero reports whether no location is recorded.
func (s SourceInfo) IsZero() bool {
	return s.kind == SourceNone
}

// String returns the citation identifier, e.g. "page 3" or "timestamp 01:22".
func (s SourceInfo) String() string {
	switch s.kind {
	case SourcePage:
		return fmt.Sprintf("page %d", s.page)
	case SourceTimestamp:
		return "timestamp " + s.timestamp
	default:
		return ""
	}
}

// Marker returns the inline text marker for this location.
func (s SourceInfo) Marker() string {
	switch s.kind {
	case SourcePage:
		return fmt.Sprintf("[source: page %d]", s.page)
	case SourceTimestamp:
		return fmt.Sprintf("[timestamp: %s]", s.timestamp)
	default:
		return ""
	}
}

type sourceInfoJSON struct {
	Page      *int   `json:"page,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// MarshalJSON encodes the variant as {"page":N}, {"timestamp":"MM:SS"} or null.
func (s SourceInfo) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case SourcePage:
		p := s.page
		return json.Marshal(sourceInfoJSON{Page: &p})
	case SourceTimestamp:
		return json.Marshal(sourceInfoJSON{Timestamp: s.timestamp})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the forms produced by MarshalJSON.
func (s *SourceInfo) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SourceInfo{}
		return nil
	}
	var raw sourceInfoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode source_info: %w", err)
	}
	switch {
	case raw.Page != nil:
		*s = PageSource(*raw.Page)
	case raw.Timestamp != "":
		*s = TimestampSource(raw.Timestamp)
	default:
		*s = SourceInfo{}
	}
	return nil
}

// FormatTimestamp renders an offset as MM:SS. Minutes are not wrapped into hours.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Chunk is a bounded slice of source text carrying provenance metadata.
type Chunk struct {
	// ID is dense and 0-based within a session.
	ID int `json:"id"`

	// Text is the chunk content, including any inline markers.
	Text string `json:"text"`

	// Type is the originating document type.
	Type DocumentType `json:"type"`

	// Source is the originating document identifier.
	Source string `json:"source"`

	// SourceInfo is the first page or timestamp marker found in Text.
	SourceInfo SourceInfo `json:"source_info"`

	// ChunkIndex is the position within the originating split.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks in the originating split.
	TotalChunks int `json:"total_chunks"`
}

// Page is one page of extracted document text.
type Page struct {
	// Number is 1-based.
	Number int
	Text   string
}

// TranscriptSegment is a timed span of a transcript.
type TranscriptSegment struct {
	Start time.Duration
	Text  string
}

// RawContent is input to ingestion. Exactly one of Text, Pages or Segments
// is expected to be populated.
type RawContent struct {
	// Type is the document type.
	Type DocumentType

	// Source is the original identifier (filename or URL).
	Source string

	// Text is flat content: pasted text or an untimed transcript.
	Text string

	// Pages is page-delimited text from a document extractor.
	Pages []Page

	// Segments is a timed transcript.
	Segments []TranscriptSegment
}

// IsEmpty returns true if no content is present.
func (r RawContent) IsEmpty() bool {
	return r.Text == "" && len(r.Pages) == 0 && len(r.Segments) == 0
}

// IngestResult is the outcome of processing one document.
type IngestResult struct {
	// Chunks are the document's chunks with session-wide ids.
	Chunks []Chunk

	// FullText is the normalised, marker-annotated text that was split.
	FullText string

	// Document is the descriptor appended to the session.
	Document DocumentDescriptor
}
