// Command kensho builds study sessions from documents and answers questions
// about them with citations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/kensho/internal/adapters/driven/ai"
	"github.com/custodia-labs/kensho/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kensho/internal/adapters/driven/extract/pdf"
	fileindex "github.com/custodia-labs/kensho/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kensho/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/kensho/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/kensho/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/kensho/internal/adapters/driving/cli"
	"github.com/custodia-labs/kensho/internal/core/domain"
	"github.com/custodia-labs/kensho/internal/core/ports/driven"
	"github.com/custodia-labs/kensho/internal/core/services"
	"github.com/custodia-labs/kensho/internal/logger"
	"github.com/custodia-labs/kensho/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	home, err := file.Home()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return err
	}
	aiValidator := ai.NewConfigValidator()
	settingsService := services.NewSettingsService(configStore, aiValidator)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	aiServices, err := ai.Init(settings)
	if err != nil {
		return err
	}
	defer aiServices.Close()

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}

	indexStore, closeIndex, err := openIndexStore(ctx, settings, dataDir)
	if err != nil {
		return err
	}
	defer closeIndex()

	sessionStore, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer sessionStore.Close()

	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return err
	}

	embedder := services.NewEmbeddingProvider(aiServices.LocalEmbedding, aiServices.RemoteEmbedding)
	embedder.SetRemoteTimeout(settings.RemoteEmbedding.Timeout)

	proc := chunker.New(
		chunker.WithChunkSize(settings.Chunker.ChunkSize),
		chunker.WithOverlap(settings.Chunker.Overlap),
		chunker.WithMinLineLength(settings.Chunker.MinLineLength),
	)

	indexes := services.NewIndexService(embedder, indexStore, sessionStore)
	sessions := services.NewSessionService(sessionStore, indexes, indexStore.Location)
	retrieval := services.NewRetrievalService(indexes, embedder, flat.Factory, sessionStore)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Session:   sessions,
		Ingest:    services.NewIngestService(sessions, sessionStore, indexes, proc, pdf.New(), aiServices.Transcriber),
		Index:     indexes,
		Retrieval: retrieval,
		Citation:  services.NewCitationService(),
		Answer:    services.NewAnswerService(retrieval, aiServices.LLM, prompts),
		Study:     services.NewStudyService(retrieval, aiServices.LLM, prompts),
		Settings:  settingsService,
	})

	logger.Debug("home %s, data %s, index backend %s", home, dataDir, settings.Storage.Backend)
	return cli.Execute(ctx)
}

// openIndexStore opens the configured index backend.
func openIndexStore(
	ctx context.Context, settings *domain.AppSettings, dataDir string,
) (driven.IndexStore, func(), error) {
	switch settings.Storage.Backend {
	case domain.StorageBackendPostgres:
		store, err := postgres.Open(ctx, settings.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := fileindex.NewIndexStore(filepath.Join(dataDir, "indexes"))
		if err != nil {
			return nil, nil, fmt.Errorf("open index store: %w", err)
		}
		return store, func() {}, nil
	}
}
