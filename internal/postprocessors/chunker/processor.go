// Package chunker splits ingested text into overlapping, source-attributed chunks.
//
// Raw content is first normalised per logical unit (page or transcript segment)
// and annotated with inline citation markers. The annotated full text is then
// split recursively on paragraph, line, sentence and word boundaries into
// windows of about DefaultChunkSize characters sharing DefaultChunkOverlap
// characters with their neighbour.
package chunker

import (
	"regexp"
	"strconv"

	"github.com/custodia-labs/kensho/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultMinLineLength is the shortest page line kept by normalisation.
const DefaultMinLineLength = 10

// markerPattern matches either citation marker. Group 1 is a page number,
// group 2 a timestamp.
var markerPattern = regexp.MustCompile(`\[source: page (\d+)\]|\[timestamp: (\d{2,}:\d{2})\]`)

// Processor normalises raw content and splits it into chunks.
type Processor struct {
	chunkSize     int
	overlap       int
	minLineLength int
	splitter      *splitter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinLineLength sets the shortest page line kept during normalisation.
func WithMinLineLength(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLineLength = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultChunkOverlap,
		minLineLength: DefaultMinLineLength,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	p.splitter = newSplitter(p.chunkSize, p.overlap)
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process normalises raw content and chunks it.
// It returns the chunks and the marker-annotated full text they were cut from.
func (p *Processor) Process(raw domain.RawContent) ([]domain.Chunk, string) {
	fullText := p.Normalise(raw)
	return p.Chunk(fullText, raw.Type, raw.Source), fullText
}

// Chunk splits text into ordered chunks with IDs starting at 0.
// Empty input yields no chunks.
func (p *Processor) Chunk(text string, docType domain.DocumentType, source string) []domain.Chunk {
	pieces := p.splitter.split(text)
	if len(pieces) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:          i,
			Text:        piece,
			Type:        docType,
			Source:      source,
			SourceInfo:  ExtractSourceInfo(piece),
			ChunkIndex:  i,
			TotalChunks: len(pieces),
		}
	}
	return chunks
}

// ExtractSourceInfo returns the first page or timestamp marker found in text.
func ExtractSourceInfo(text string) domain.SourceInfo {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.SourceInfo{}
	}
	if m[1] != "" {
		page, err := strconv.Atoi(m[1])
		if err != nil {
			return domain.SourceInfo{}
		}
		return domain.PageSource(page)
	}
	return domain.TimestampSource(m[2])
}
