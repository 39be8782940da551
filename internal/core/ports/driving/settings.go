package driving

import "github.com/custodia-labs/kensho/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the local embedding path.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL string) error

	// SetRemoteEmbedding configures the optional remote embedding path.
	SetRemoteEmbedding(enabled bool, model, baseURL, apiKey string) error

	// SetLLMProvider configures the answer-generation model.
	SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// Validate checks that current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig pings the configured embedding paths.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig pings the configured answer model.
	ValidateLLMConfig() error
}
