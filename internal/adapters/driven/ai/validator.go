package ai

import (
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks AI settings by building the service and pinging it.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the local embedding provider.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	svc, err := CreateLocalEmbedding(settings)
	if err != nil {
		return err
	}
	return ping("embedding provider", svc)
}

// ValidateRemoteEmbedding pings the remote embedding endpoint.
func (v *ConfigValidator) ValidateRemoteEmbedding(settings *domain.RemoteEmbeddingSettings) error {
	svc, err := CreateRemoteEmbedding(settings)
	if err != nil {
		return err
	}
	return ping("remote embedding endpoint", svc)
}

// ValidateLLM pings the chat endpoint. An unconfigured LLM is not an error.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	return ping("LLM", svc)
}
