package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a service provider for embeddings, chat or transcription.
type AIProvider string

// Available AI providers.
const (
	// AIProviderBuiltin is the in-process hashing embedder. Always available.
	AIProviderBuiltin AIProvider = "builtin"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible HTTP API (OpenAI, Gemini, Groq).
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderBuiltin, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs on the local machine.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderBuiltin || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderBuiltin:
		return "Builtin (hashing, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings configures the local embedding path.
type EmbeddingSettings struct {
	// Provider is builtin or ollama.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string
}

// IsConfigured returns true if the local path is usable.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsLocal()
}

// RemoteEmbeddingSettings configures the optional remote embedding path.
type RemoteEmbeddingSettings struct {
	// Enabled makes builds request the remote path.
	Enabled bool

	// Model is the remote embedding model name.
	Model string

	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string

	// APIKey authenticates against BaseURL.
	APIKey string

	// Timeout bounds each remote request.
	Timeout time.Duration
}

// IsConfigured returns true if the remote path can be attempted.
func (r RemoteEmbeddingSettings) IsConfigured() bool {
	return r.APIKey != "" && r.Model != ""
}

// LLMSettings configures the answer-generation model.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if l.Provider != AIProviderOpenAI && l.Provider != AIProviderOllama {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// TranscriptionSettings configures the speech-to-text collaborator.
type TranscriptionSettings struct {
	Model   string
	BaseURL string
	APIKey  string
}

// IsConfigured returns true if transcription can be attempted.
func (t TranscriptionSettings) IsConfigured() bool {
	return t.APIKey != ""
}

// ChunkerSettings configures splitting and normalisation.
type ChunkerSettings struct {
	// ChunkSize is the target window size in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// MinLineLength drops shorter lines during page normalisation.
	MinLineLength int
}

// StorageBackend selects where index artifacts live.
type StorageBackend string

// Available storage backends.
const (
	StorageBackendFile     StorageBackend = "file"
	StorageBackendPostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendFile || b == StorageBackendPostgres
}

// StorageSettings configures persistence.
type StorageSettings struct {
	// Backend selects the index store.
	Backend StorageBackend

	// DataDir holds the session database and file-backed indexes.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// RetrievalSettings configures search defaults.
type RetrievalSettings struct {
	// TopK is the default number of results.
	TopK int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding       EmbeddingSettings
	RemoteEmbedding RemoteEmbeddingSettings
	LLM             LLMSettings
	Transcription   TranscriptionSettings
	Chunker         ChunkerSettings
	Storage         StorageSettings
	Retrieval       RetrievalSettings
}

// Default setting values.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultMinLineLength  = 10
	DefaultTopK           = 5
	DefaultBuiltinModel   = "hashing-384"
	DefaultRemoteModel    = "text-embedding-004"
	DefaultRemoteBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultRemoteTimeout  = 30 * time.Second
	DefaultOllamaBaseURL  = "http://localhost:11434"
	DefaultLLMModel       = "gpt-4o-mini"
	DefaultWhisperModel   = "whisper-large-v3"
	DefaultWhisperBaseURL = "https://api.groq.com/openai/v1"
)

// DefaultAppSettings returns settings that work offline out of the box.
// Remote embeddings, LLM and transcription are left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderBuiltin,
			Model:    DefaultBuiltinModel,
		},
		RemoteEmbedding: RemoteEmbeddingSettings{
			Model:   DefaultRemoteModel,
			BaseURL: DefaultRemoteBaseURL,
			Timeout: DefaultRemoteTimeout,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModel,
		},
		Transcription: TranscriptionSettings{
			Model:   DefaultWhisperModel,
			BaseURL: DefaultWhisperBaseURL,
		},
		Chunker: ChunkerSettings{
			ChunkSize:     DefaultChunkSize,
			Overlap:       DefaultChunkOverlap,
			MinLineLength: DefaultMinLineLength,
		},
		Storage: StorageSettings{
			Backend: StorageBackendFile,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
	}
}

// AllEmbeddingProviders returns providers usable for the local embedding path.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderBuiltin,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderBuiltin: DefaultBuiltinModel,
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  DefaultRemoteModel,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		DefaultBuiltinModel:      384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-004":     768,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
