package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
	"github.com/custodia-labs/kensho/internal/logger"
	"github.com/custodia-labs/kensho/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

const (
	// MaxAudioBytes is the largest audio file sent for transcription.
	MaxAudioBytes = 25 * 1024 * 1024

	// minTranscriptLength is the shortest transcript treated as content.
	minTranscriptLength = 10
)

// IngestService turns raw material into session chunks and rebuilds the
// session index over everything ingested so far.
type IngestService struct {
	sessions    driving.SessionService
	store       driven.SessionStore
	indexes     driving.IndexService
	chunker     *chunker.Processor
	extractor   driven.TextExtractor
	transcriber driven.Transcriber
	locks       sessionLocks
	now         func() time.Time
}

// NewIngestService creates an ingest service. extractor and transcriber may
// be nil; the corresponding convenience paths then fail.
func NewIngestService(
	sessions driving.SessionService,
	store driven.SessionStore,
	indexes driving.IndexService,
	proc *chunker.Processor,
	extractor driven.TextExtractor,
	transcriber driven.Transcriber,
) *IngestService {
	if proc == nil {
		proc = chunker.New()
	}
	return &IngestService{
		sessions:    sessions,
		store:       store,
		indexes:     indexes,
		chunker:     proc,
		extractor:   extractor,
		transcriber: transcriber,
		now:         time.Now,
	}
}

// Process chunks raw content, indexes it together with the session's earlier
// chunks and records the document. On failure the session is unchanged.
func (s *IngestService) Process(
	ctx context.Context, sessionID string, raw domain.RawContent,
) (*domain.IngestResult, error) {
	if !raw.Type.IsValid() {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrIngestion, domain.ErrUnsupportedType, raw.Type)
	}
	if raw.IsEmpty() {
		return nil, fmt.Errorf("%w: %s has no content", domain.ErrIngestion, raw.Source)
	}

	chunks, fullText := s.chunker.Process(raw)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable text after normalisation", domain.ErrIngestion, raw.Source)
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.sessions.Ensure(ctx, sessionID); err != nil {
		return nil, err
	}
	existing, err := s.store.GetChunks(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session chunks: %w", err)
	}

	offset := len(existing)
	for i := range chunks {
		chunks[i].ID = offset + i
	}

	all := make([]domain.Chunk, 0, offset+len(chunks))
	all = append(all, existing...)
	all = append(all, chunks...)
	if err := s.indexes.Build(ctx, sessionID, all); err != nil {
		return nil, err
	}

	doc := domain.DocumentDescriptor{
		Type:        raw.Type,
		Source:      raw.Source,
		Pages:       len(raw.Pages),
		ChunkCount:  len(chunks),
		ProcessedAt: s.now().UTC(),
	}
	if err := s.store.AppendDocument(ctx, sessionID, doc, chunks); err != nil {
		s.restoreIndex(ctx, sessionID, existing)
		return nil, fmt.Errorf("record document: %w", err)
	}

	logger.Info("ingested %s %q into %s: %d chunks", raw.Type, raw.Source, sessionID, len(chunks))
	return &domain.IngestResult{Chunks: chunks, FullText: fullText, Document: doc}, nil
}

// restoreIndex puts the index back to the chunks recorded before a failed
// ingest. Failures are logged; the next rebuild repairs the index.
func (s *IngestService) restoreIndex(ctx context.Context, sessionID string, existing []domain.Chunk) {
	var err error
	if len(existing) == 0 {
		_, err = s.indexes.Delete(ctx, sessionID)
	} else {
		err = s.indexes.Build(ctx, sessionID, existing)
	}
	if err != nil {
		logger.Warn("restore index for %s: %v", sessionID, err)
	}
}

// IngestPDF extracts page text from the file at path and processes it.
func (s *IngestService) IngestPDF(ctx context.Context, sessionID, path string) (*domain.IngestResult, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no document extractor configured", domain.ErrIngestion)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	pages, err := s.extractor.Extract(ctx, f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: extract %s: %w", domain.ErrIngestion, filepath.Base(path), err)
	}
	logger.Debug("extracted %d pages from %s", len(pages), path)

	return s.Process(ctx, sessionID, domain.RawContent{
		Type:   domain.DocumentTypePDF,
		Source: filepath.Base(path),
		Pages:  pages,
	})
}

// IngestAudio transcribes the file at path and processes the transcript as a
// youtube document identified by source.
func (s *IngestService) IngestAudio(
	ctx context.Context, sessionID, path, source string,
) (*domain.IngestResult, error) {
	if s.transcriber == nil {
		return nil, domain.ErrTranscriptionUnavailable
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}
	if info.Size() > MaxAudioBytes {
		return nil, fmt.Errorf("%w: audio file is %.2f MB, maximum is %d MB",
			domain.ErrIngestion, float64(info.Size())/(1024*1024), MaxAudioBytes/(1024*1024))
	}
	if source == "" {
		source = filepath.Base(path)
	}

	progress := rate.Sometimes{Interval: time.Second}
	transcript, err := s.transcriber.Transcribe(ctx, path, func(f float64) {
		progress.Do(func() { logger.Info("transcribing %s: %.0f%%", source, f*100) })
	})
	if err != nil {
		if errors.Is(err, domain.ErrTranscriptionUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: transcribe %s: %w", domain.ErrIngestion, source, err)
	}
	transcript = strings.TrimSpace(transcript)
	if len([]rune(transcript)) < minTranscriptLength {
		return nil, fmt.Errorf("%w: transcript of %s is empty or too short", domain.ErrIngestion, source)
	}

	return s.Process(ctx, sessionID, domain.RawContent{
		Type:   domain.DocumentTypeYouTube,
		Source: source,
		Text:   transcript,
	})
}

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtu\.be/([^/?&#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([^&#]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^/?&#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^/?&#]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^/?&#]+)`),
}

var videoIDShape = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID extracts the 11-character video id from a YouTube URL.
func ParseVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil && videoIDShape.MatchString(m[1]) {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: not a YouTube video URL: %q", domain.ErrInvalidInput, url)
}
