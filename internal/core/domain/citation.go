package domain

// SourceRef is a deduplicated source descriptor derived from a chunk.
type SourceRef struct {
	ChunkID   int          `json:"chunk_id"`
	Type      DocumentType `json:"type"`
	Source    string       `json:"source"`
	Page      int          `json:"page,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
}

// Answer is generated text attributed to the chunks it was grounded on.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources are the documents the retrieved chunks came from.
	Sources []SourceRef `json:"sources"`

	// Citations are the markers found in Text, e.g. "page 3".
	Citations []string `json:"citations"`

	// Confidence is the mean similarity of the retrieved chunks in [0,1].
	Confidence float64 `json:"confidence"`

	// Strategy is the retrieval stage that supplied context.
	Strategy RetrievalStrategy `json:"strategy"`
}
