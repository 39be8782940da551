// Package ai builds the embedding, chat and transcription adapters named by
// the application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/kensho/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/kensho/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/kensho/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/kensho/internal/adapters/driven/llm/openai"
	openaitranscribe "github.com/custodia-labs/kensho/internal/adapters/driven/transcribe/openai"
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/logger"
)

// pingTimeout bounds connectivity checks.
const pingTimeout = 5 * time.Second

// Services holds the AI collaborators built from settings. Any field other
// than LocalEmbedding may be nil.
type Services struct {
	LocalEmbedding  driven.EmbeddingService
	RemoteEmbedding driven.EmbeddingService
	LLM             driven.LLMService
	Transcriber     driven.Transcriber

	// Warnings lists optional collaborators that could not be built.
	Warnings []string
}

// Close releases every service.
func (s *Services) Close() {
	if s.LocalEmbedding != nil {
		s.LocalEmbedding.Close()
	}
	if s.RemoteEmbedding != nil {
		s.RemoteEmbedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// Init builds every collaborator. Only the local embedding path is required;
// problems with the others become warnings.
func Init(settings *domain.AppSettings) (*Services, error) {
	local, err := CreateLocalEmbedding(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	s := &Services{LocalEmbedding: local}

	if settings.RemoteEmbedding.Enabled {
		s.RemoteEmbedding, err = CreateRemoteEmbedding(&settings.RemoteEmbedding)
		if err != nil {
			s.warn("remote embeddings disabled: %v", err)
		}
	}
	if settings.LLM.IsConfigured() {
		s.LLM, err = CreateLLMService(&settings.LLM)
		if err != nil {
			s.warn("answers disabled: %v", err)
		}
	}
	if settings.Transcription.IsConfigured() {
		s.Transcriber, err = CreateTranscriber(&settings.Transcription)
		if err != nil {
			s.warn("transcription disabled: %v", err)
		}
	}
	return s, nil
}

func (s *Services) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	s.Warnings = append(s.Warnings, msg)
}

// CreateLocalEmbedding builds the builtin or Ollama embedding service.
func CreateLocalEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, errors.New("no embedding settings")
	}

	switch settings.Provider {
	case domain.AIProviderBuiltin:
		return hashing.NewEmbeddingService(builtinDimensions(settings.Model)), nil

	case domain.AIProviderOllama:
		dimensions := domain.EmbeddingDimensions()[settings.Model]
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	default:
		return nil, fmt.Errorf("%w: %s cannot be the local embedding provider", domain.ErrUnsupportedType, settings.Provider)
	}
}

// builtinDimensions reads the size from a "hashing-N" model name.
func builtinDimensions(model string) int {
	var n int
	if _, err := fmt.Sscanf(model, "hashing-%d", &n); err != nil || n <= 0 {
		return hashing.DefaultDimensions
	}
	return n
}

// CreateRemoteEmbedding builds the OpenAI-compatible embedding service.
func CreateRemoteEmbedding(settings *domain.RemoteEmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, errors.New("remote embeddings need a model and an API key")
	}
	svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateLLMService builds the chat service. Ollama is reached through its
// OpenAI-compatible endpoint.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, domain.ErrLLMUnavailable
	}
	baseURL := settings.BaseURL
	if baseURL == "" && settings.Provider == domain.AIProviderOllama {
		baseURL = domain.DefaultOllamaBaseURL + "/v1"
	}
	svc, err := openaillm.NewLLMService(openaillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: baseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateTranscriber builds the Whisper-compatible transcriber.
func CreateTranscriber(settings *domain.TranscriptionSettings) (driven.Transcriber, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, domain.ErrTranscriptionUnavailable
	}
	t, err := openaitranscribe.New(openaitranscribe.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ping checks connectivity and closes the service.
func ping(name string, svc interface {
	Ping(context.Context) error
	Close() error
}) error {
	defer svc.Close()
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", name, err)
	}
	return nil
}
