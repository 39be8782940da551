package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyRemoteEnabled   = "remote_embedding.enabled"
	keyRemoteModel     = "remote_embedding.model"
	keyRemoteBaseURL   = "remote_embedding.base_url"
	keyRemoteAPIKey    = "remote_embedding.api_key"
	keyRemoteTimeout   = "remote_embedding.timeout_seconds"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyWhisperModel    = "transcription.model"
	keyWhisperBaseURL  = "transcription.base_url"
	keyWhisperAPIKey   = "transcription.api_key"
	keyChunkSize       = "chunker.chunk_size"
	keyChunkOverlap    = "chunker.overlap"
	keyMinLineLength   = "chunker.min_line_length"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyStoragePostgres = "storage.postgres_dsn"
	keyRetrievalTopK   = "retrieval.top_k"
)

// SettingsService maps config keys to domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a settings service. aiValidator may be nil.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get reads settings, substituting defaults for missing or invalid values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, d.Embedding.Provider)
	if !embedProvider.IsLocal() {
		embedProvider = d.Embedding.Provider
	}
	embedModel := s.configStore.GetString(keyEmbedModel)
	if embedModel == "" {
		embedModel = domain.DefaultEmbeddingModels()[embedProvider]
	}
	embedBaseURL := s.configStore.GetString(keyEmbedBaseURL)
	if embedBaseURL == "" && embedProvider == domain.AIProviderOllama {
		embedBaseURL = domain.DefaultOllamaBaseURL
	}

	return &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    embedModel,
			BaseURL:  embedBaseURL,
		},
		RemoteEmbedding: domain.RemoteEmbeddingSettings{
			Enabled: s.getBool(keyRemoteEnabled, d.RemoteEmbedding.Enabled),
			Model:   s.getString(keyRemoteModel, d.RemoteEmbedding.Model),
			BaseURL: s.getString(keyRemoteBaseURL, d.RemoteEmbedding.BaseURL),
			APIKey:  s.configStore.GetString(keyRemoteAPIKey),
			Timeout: time.Duration(s.getInt(keyRemoteTimeout, int(d.RemoteEmbedding.Timeout/time.Second))) * time.Second,
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // empty means the provider default
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Transcription: domain.TranscriptionSettings{
			Model:   s.getString(keyWhisperModel, d.Transcription.Model),
			BaseURL: s.getString(keyWhisperBaseURL, d.Transcription.BaseURL),
			APIKey:  s.configStore.GetString(keyWhisperAPIKey),
		},
		Chunker: domain.ChunkerSettings{
			ChunkSize:     s.getInt(keyChunkSize, d.Chunker.ChunkSize),
			Overlap:       s.getIntAllowZero(keyChunkOverlap, d.Chunker.Overlap),
			MinLineLength: s.getIntAllowZero(keyMinLineLength, d.Chunker.MinLineLength),
		},
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(d.Storage.Backend),
			DataDir:     s.configStore.GetString(keyStorageDataDir),
			PostgresDSN: s.configStore.GetString(keyStoragePostgres),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, d.Retrieval.TopK),
		},
	}, nil
}

// Save persists every setting. Empty secrets are not written so they never
// overwrite a stored key.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyRemoteEnabled, settings.RemoteEmbedding.Enabled},
		{keyRemoteModel, settings.RemoteEmbedding.Model},
		{keyRemoteBaseURL, settings.RemoteEmbedding.BaseURL},
		{keyRemoteTimeout, int(settings.RemoteEmbedding.Timeout / time.Second)},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyWhisperModel, settings.Transcription.Model},
		{keyWhisperBaseURL, settings.Transcription.BaseURL},
		{keyChunkSize, settings.Chunker.ChunkSize},
		{keyChunkOverlap, settings.Chunker.Overlap},
		{keyMinLineLength, settings.Chunker.MinLineLength},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStoragePostgres, settings.Storage.PostgresDSN},
		{keyRetrievalTopK, settings.Retrieval.TopK},
	}
	secrets := []struct {
		key   string
		value string
	}{
		{keyRemoteAPIKey, settings.RemoteEmbedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keyWhisperAPIKey, settings.Transcription.APIKey},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for _, v := range secrets {
		if v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the local embedding path. Empty model and
// baseURL select the provider defaults.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s cannot be the local embedding path", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	switch {
	case baseURL != "":
		settings.Embedding.BaseURL = baseURL
	case provider == domain.AIProviderOllama:
		settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
	default:
		settings.Embedding.BaseURL = ""
	}

	return s.Save(settings)
}

// SetRemoteEmbedding configures the remote embedding path. Enabling it
// requires an API key, either given or already stored.
func (s *SettingsService) SetRemoteEmbedding(enabled bool, model, baseURL, apiKey string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.RemoteEmbedding.Enabled = enabled
	if model != "" {
		settings.RemoteEmbedding.Model = model
	}
	if baseURL != "" {
		settings.RemoteEmbedding.BaseURL = baseURL
	}
	if apiKey != "" {
		settings.RemoteEmbedding.APIKey = apiKey
	}
	if enabled && settings.RemoteEmbedding.APIKey == "" {
		return fmt.Errorf("%w: API key required for remote embeddings", domain.ErrInvalidInput)
	}

	return s.Save(settings)
}

// SetLLMProvider configures the answer model.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if provider != domain.AIProviderOpenAI && provider != domain.AIProviderOllama {
		return fmt.Errorf("%w: LLM provider %q", domain.ErrUnsupportedType, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModel
	}
	settings.LLM.BaseURL = baseURL
	if baseURL == "" && provider == domain.AIProviderOllama {
		settings.LLM.BaseURL = domain.DefaultOllamaBaseURL + "/v1"
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can be used.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("local embedding provider %q is not usable", settings.Embedding.Provider))
	}
	if settings.RemoteEmbedding.Enabled && !settings.RemoteEmbedding.IsConfigured() {
		errs = append(errs, errors.New("remote embeddings are enabled but no API key is set"))
	}
	c := settings.Chunker
	if c.ChunkSize <= 0 || c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk size %d with overlap %d is invalid", c.ChunkSize, c.Overlap))
	}
	if !settings.Storage.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("storage backend %q is not supported", settings.Storage.Backend))
	}
	if settings.Storage.Backend == domain.StorageBackendPostgres && settings.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("postgres storage requires storage.postgres_dsn"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig pings the configured embedding paths.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.aiValidator.ValidateEmbedding(&settings.Embedding); err != nil {
		return err
	}
	if settings.RemoteEmbedding.Enabled {
		return s.aiValidator.ValidateRemoteEmbedding(&settings.RemoteEmbedding)
	}
	return nil
}

// ValidateLLMConfig pings the configured answer model.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val > 0 {
		return val
	}
	return defaultVal
}

// getIntAllowZero keeps an explicit 0.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	if val := s.configStore.GetInt(key); val >= 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
