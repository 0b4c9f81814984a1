// Package app wires configuration, storage, providers, the document store,
// and the engine into one place the commands can share.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sliitlabs/neuroai/src/config"
	"github.com/sliitlabs/neuroai/src/docstore"
	"github.com/sliitlabs/neuroai/src/engine"
	"github.com/sliitlabs/neuroai/src/providers"
	"github.com/sliitlabs/neuroai/src/storage"
)

// App holds the initialized services.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *storage.DB
	Docs     *docstore.Store
	Registry *providers.Registry
	Engine   *engine.Engine

	// InputHistoryPath is where the console persists its line history.
	InputHistoryPath string
}

// Options tweaks which services New initializes.
type Options struct {
	// SkipProviders builds the app without any LLM provider, for commands
	// that only touch storage (ingest, migrate).
	SkipProviders bool
}

// New initializes the application from cfg. The document store is only
// available when an OpenAI key is configured for embeddings; chat still
// works without it.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths := config.GetStoragePaths(cfg.Data.Directory)

	store, err := storage.Open(paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{
		Config:           cfg,
		Logger:           logger,
		Store:            store,
		InputHistoryPath: paths.InputHistoryPath,
	}

	embedder, err := docstore.NewEmbeddingClient(docstore.EmbeddingOptions{
		Model:  cfg.Retrieval.EmbeddingModel,
		APIKey: cfg.Providers["openai"].APIKey,
		Logger: logger,
	})
	switch {
	case err == nil:
		a.Docs = docstore.NewStore(store, embedder, docstore.StoreOptions{
			TopK:         cfg.Retrieval.TopK,
			ChunkSize:    cfg.Retrieval.ChunkSize,
			ChunkOverlap: cfg.Retrieval.ChunkOverlap,
			Logger:       logger,
		})
	case errors.Is(err, docstore.ErrMissingEmbeddingKey):
		logger.Debug("document retrieval disabled", "reason", err)
	default:
		store.Close()
		return nil, err
	}

	if !opts.SkipProviders {
		registry, err := providers.FromConfig(cfg, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		a.Registry = registry
		a.Engine = engine.New(registry, engine.Options{
			Docs:         a.Docs,
			Logger:       logger,
			SystemPrompt: cfg.Agent.SystemPrompt,
			Temperature:  cfg.Agent.Temperature,
			MaxTokens:    cfg.Agent.MaxTokens,
			TopK:         cfg.Retrieval.TopK,
		})
	}

	return a, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
