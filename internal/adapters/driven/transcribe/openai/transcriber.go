// Package openai provides a speech-to-text adapter for Whisper-compatible
// APIs such as OpenAI and Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/kensho/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultModel   = "whisper-large-v3"
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultTimeout = 10 * time.Minute
)

// Config holds configuration for the transcriber.
type Config struct {
	// APIKey authenticates requests (required).
	APIKey string

	// BaseURL is the API endpoint (default: Groq's OpenAI-compatible API).
	BaseURL string

	// Model is the speech model (default: whisper-large-v3).
	Model string

	// Language is an optional ISO-639-1 hint.
	Language string

	// Timeout bounds the upload and transcription (default: 10m).
	Timeout time.Duration
}

// Transcriber uploads an audio file and returns its transcript.
type Transcriber struct {
	client   *openai.Client
	http     *http.Client
	model    string
	language string
}

// New creates a transcriber.
func New(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("transcribe: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	clientCfg.HTTPClient = httpClient

	return &Transcriber{
		client:   openai.NewClientWithConfig(clientCfg),
		http:     httpClient,
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// Transcribe sends the file at path and returns the plain transcript.
// progress is called with 0 before the upload and 1 once the transcript arrives.
func (t *Transcriber) Transcribe(ctx context.Context, path string, progress driven.ProgressFunc) (string, error) {
	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
	}

	report(0)
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Language: t.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	report(1)

	return strings.TrimSpace(resp.Text), nil
}
