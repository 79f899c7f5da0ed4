// Package app wires configuration into the stores, index and pipeline used by
// the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"helpcenter-sync/internal/config"
	"helpcenter-sync/internal/helpcenter"
	"helpcenter-sync/internal/indexer"
	"helpcenter-sync/internal/llm"
	"helpcenter-sync/internal/state"
	"helpcenter-sync/internal/storage"
	"helpcenter-sync/internal/vectorstore"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config   *config.Config
	Store    state.Store
	Index    vectorstore.Index
	Pipeline *indexer.Pipeline

	closers []io.Closer
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), nil
}

// New builds the state store, vector index and pipeline. Close releases them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := a.openStateStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store

	index, err := newIndex(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Index = index

	source := helpcenter.NewClient(cfg.HelpCenterURL, cfg.HelpCenterLocale)
	a.Pipeline = indexer.NewPipeline(source, index, store, indexer.Config{
		DocDir:            cfg.DocDir,
		ChunkDir:          cfg.ChunkDir,
		ArticleLimit:      cfg.ArticleLimit,
		VectorStoreName:   cfg.VectorStoreName,
		DeleteOldFiles:    cfg.DeleteOldFiles,
		PollInterval:      cfg.PollInterval,
		UploadConcurrency: cfg.UploadConcurrency,
		Chunking:          cfg.Chunking,
	})
	return a, nil
}

func (a *App) openStateStore(ctx context.Context) (state.Store, error) {
	cfg := a.Config
	logger := slog.Default()

	switch cfg.StateBackend {
	case config.StateBackendSQLite:
		db, err := storage.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, db)
		if err := storage.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.InfoContext(ctx, "state store ready", "backend", cfg.StateBackend, "path", cfg.DBPath)
		return storage.NewStateRepo(db), nil

	case config.StateBackendGCS:
		store, err := state.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSObject, cfg.StatePath, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		logger.InfoContext(ctx, "state store ready", "backend", cfg.StateBackend, "bucket", cfg.GCSBucket, "object", cfg.GCSObject)
		return store, nil

	default:
		logger.InfoContext(ctx, "state store ready", "backend", config.StateBackendFile, "path", cfg.StatePath)
		return state.NewFileStore(cfg.StatePath), nil
	}
}

func newIndex(ctx context.Context, cfg *config.Config) (vectorstore.Index, error) {
	if cfg.IndexBackend != config.IndexBackendQdrant {
		return vectorstore.NewOpenAIIndex(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), nil
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)

	// Fail fast on a model whose vectors do not fit the collection.
	probe, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return nil, fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(probe) == 0 || len(probe[0]) != cfg.QdrantVectorSize {
		return nil, fmt.Errorf("embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
	}
	slog.Default().InfoContext(ctx, "embedding client validated", "vector_size", cfg.QdrantVectorSize)

	index, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, embedder, cfg.QdrantVectorSize)
	if err != nil {
		return nil, err
	}
	return index, nil
}

// Close releases database and storage clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
