package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/logger"
)

// embedBatchSize is how many texts are sent to an embedding service per call.
const embedBatchSize = 32

// EmbeddingBatch is the output of one EmbedAll call. Every vector comes from
// the same model.
type EmbeddingBatch struct {
	Vectors   [][]float32
	Model     string
	Dimension int
	Remote    bool
}

// EmbeddingProvider abstracts over a local embedding service and an optional
// remote one. Builds request the remote path when it is enabled; any remote
// failure re-embeds the whole batch locally so one index never mixes spaces.
type EmbeddingProvider struct {
	local     driven.EmbeddingService
	remote    driven.EmbeddingService
	useRemote bool
	timeout   time.Duration
	progress  rate.Sometimes
}

// NewEmbeddingProvider creates a provider. remote may be nil.
func NewEmbeddingProvider(local, remote driven.EmbeddingService) *EmbeddingProvider {
	return &EmbeddingProvider{
		local:     local,
		remote:    remote,
		useRemote: remote != nil,
		timeout:   domain.DefaultRemoteTimeout,
		progress:  rate.Sometimes{Interval: 2 * time.Second},
	}
}

// SetRemoteTimeout bounds each remote request. Zero or negative disables the bound.
func (p *EmbeddingProvider) SetRemoteTimeout(d time.Duration) {
	p.timeout = d
}

// LocalModel returns the local model identifier, or "" when there is none.
func (p *EmbeddingProvider) LocalModel() string {
	if p.local == nil {
		return ""
	}
	return p.local.ModelName()
}

// EmbedAll returns one vector per text.
// Returns domain.ErrEmbeddingUnavailable only when no path produced vectors.
func (p *EmbeddingProvider) EmbedAll(ctx context.Context, texts []string) (*EmbeddingBatch, error) {
	if p.useRemote {
		batch, err := p.embedWith(ctx, p.remote, texts, true)
		if err == nil {
			return batch, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("remote embeddings failed, falling back to local model: %v", err)
	}

	if p.local == nil {
		return nil, fmt.Errorf("%w: no local embedding model configured", domain.ErrEmbeddingUnavailable)
	}
	batch, err := p.embedWith(ctx, p.local, texts, false)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return batch, nil
}

func (p *EmbeddingProvider) embedWith(
	ctx context.Context, svc driven.EmbeddingService, texts []string, remote bool,
) (*EmbeddingBatch, error) {
	batch := &EmbeddingBatch{
		Vectors:   make([][]float32, 0, len(texts)),
		Model:     svc.ModelName(),
		Dimension: svc.Dimensions(),
		Remote:    remote,
	}

	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		vectors, err := p.call(ctx, remote, func(ctx context.Context) ([][]float32, error) {
			return svc.EmbedBatch(ctx, texts[start:end])
		})
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embed texts %d-%d: got %d vectors", start, end-1, len(vectors))
		}
		for i, v := range vectors {
			if len(v) == 0 {
				return nil, fmt.Errorf("embed text %d: empty vector", start+i)
			}
			if batch.Dimension == 0 {
				batch.Dimension = len(v)
			}
			if len(v) != batch.Dimension {
				return nil, fmt.Errorf("embed text %d: dimension %d, want %d", start+i, len(v), batch.Dimension)
			}
			batch.Vectors = append(batch.Vectors, domain.Normalize(v))
		}

		done := end
		p.progress.Do(func() {
			logger.Info("embedded %d/%d chunks with %s", done, len(texts), batch.Model)
		})
	}
	return batch, nil
}

// call runs fn, bounded by the remote timeout when remote is set.
func (p *EmbeddingProvider) call(
	ctx context.Context, remote bool, fn func(context.Context) ([][]float32, error),
) ([][]float32, error) {
	if !remote || p.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return fn(ctx)
}

// EmbedQuery embeds a query with the path recorded in prov. The result is
// L2-normalised. A model or dimension that differs from prov is
// domain.ErrEmbeddingMismatch.
func (p *EmbeddingProvider) EmbedQuery(
	ctx context.Context, query string, prov domain.IndexProvenance,
) ([]float32, error) {
	svc := p.local
	if prov.Remote {
		svc = p.remote
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: index built with %s, which is not configured", domain.ErrEmbeddingMismatch, prov.Model)
	}
	if svc.ModelName() != prov.Model {
		return nil, fmt.Errorf("%w: index built with %s, query model is %s",
			domain.ErrEmbeddingMismatch, prov.Model, svc.ModelName())
	}

	vectors, err := p.call(ctx, prov.Remote, func(ctx context.Context) ([][]float32, error) {
		v, err := svc.Embed(ctx, query)
		return [][]float32{v}, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbeddingUnavailable, err)
	}
	v := vectors[0]
	if len(v) != prov.Dimension {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d",
			domain.ErrEmbeddingMismatch, len(v), prov.Dimension)
	}
	return domain.Normalize(v), nil
}
