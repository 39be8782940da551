package driven

import "github.com/custodia-labs/kensho/internal/core/domain"

// AIConfigValidator checks that configured AI services are reachable.
type AIConfigValidator interface {
	// ValidateEmbedding pings the local embedding path.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateRemoteEmbedding pings the remote embedding path.
	ValidateRemoteEmbedding(settings *domain.RemoteEmbeddingSettings) error

	// ValidateLLM pings the answer model.
	ValidateLLM(settings *domain.LLMSettings) error
}
