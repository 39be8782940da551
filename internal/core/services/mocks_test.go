package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService. Each text maps to a
// vector from vectors, or to fallback when absent.
type mockEmbeddingService struct {
	mu       sync.Mutex
	model    string
	dims     int
	vectors  map[string][]float32
	embedErr error
	calls    int
	block    bool
}

func newMockEmbedding(model string, dims int) *mockEmbeddingService {
	return &mockEmbeddingService{model: model, dims: dims, vectors: map[string][]float32{}}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	v[len(text)%m.dims] = 1
	return v
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	block, err := m.block, m.embedErr
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return m.model }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockIndexStore wraps a map and can inject errors.
type mockIndexStore struct {
	mu      sync.Mutex
	indexes map[string]*domain.SessionIndex
	saveErr error
	loadErr error
	saves   int
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{indexes: map[string]*domain.SessionIndex{}}
}

func (m *mockIndexStore) Save(_ context.Context, idx *domain.SessionIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	m.saves++
	m.indexes[idx.SessionID] = idx
	return nil
}

func (m *mockIndexStore) Load(_ context.Context, id string) (*domain.SessionIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	idx, ok := m.indexes[id]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}
	return idx, nil
}

func (m *mockIndexStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.indexes[id]
	delete(m.indexes, id)
	return ok, nil
}

func (m *mockIndexStore) Stat(_ context.Context, id string) (*domain.IndexStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indexes[id]
	if !ok {
		return &domain.IndexStats{SessionID: id}, nil
	}
	return &domain.IndexStats{
		SessionID:  id,
		Exists:     true,
		Model:      idx.Provenance.Model,
		Dimension:  idx.Provenance.Dimension,
		ChunkCount: idx.Provenance.ChunkCount,
		Remote:     idx.Provenance.Remote,
	}, nil
}

func (m *mockIndexStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.indexes))
	for id := range m.indexes {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockIndexStore) Location(id string) string { return "mock://" + id }

// mockLLMService records the messages it receives.
type mockLLMService struct {
	reply    string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, msgs []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.messages, m.opts = msgs, opts
	return m.reply, m.err
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockExtractor returns fixed pages.
type mockExtractor struct {
	pages []domain.Page
	err   error
}

func (m *mockExtractor) Extract(_ context.Context, _ io.ReaderAt, _ int64) ([]domain.Page, error) {
	return m.pages, m.err
}

// mockTranscriber returns a fixed transcript and reports progress.
type mockTranscriber struct {
	transcript string
	err        error
	progress   []float64
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ string, progress driven.ProgressFunc) (string, error) {
	for _, f := range []float64{0.5, 1} {
		m.progress = append(m.progress, f)
		if progress != nil {
			progress(f)
		}
	}
	return m.transcript, m.err
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("unknown prompt")
}

func (m *mockPromptStore) Reload()     {}
func (m *mockPromptStore) Dir() string { return "" }
