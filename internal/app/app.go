// Package app wires the configured components into a single context that is
// handed to the CLI commands and the TUI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"caserag/internal/cachestore"
	"caserag/internal/config"
	"caserag/internal/domain"
	"caserag/internal/embedding"
	"caserag/internal/index"
	"caserag/internal/severity"
	"caserag/internal/summarizer"
)

// Context holds the long-lived services of one process.
type Context struct {
	Config     *config.AppConfig
	Logger     *slog.Logger
	Index      *index.Index
	Scorer     severity.Scorer
	Summarizer *summarizer.FrequencySummarizer
	// Store is nil when the configured cache backend could not be opened.
	Store domain.CacheStore
}

// New opens the cache store, builds the similarity index and selects the
// severity scorer. An unusable cache backend is logged and the index is
// built without persistence; an invalid embedder configuration is an error.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Context, error) {
	if logger == nil {
		logger = slog.Default()
	}
	emb, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	store, err := cachestore.New(ctx, cfg.Cache)
	if err != nil {
		logger.Warn("cache store unavailable, embeddings will not be persisted", "type", cfg.Cache.Type, "error", err)
		store = nil
	}

	idx := index.Build(ctx, index.Options{
		CorpusPath: cfg.Corpus.Path,
		Embedder:   emb,
		Store:      store,
		Logger:     logger,
		BatchSize:  cfg.Retrieval.BatchSize,
	})

	scorer := severity.New(ctx, severity.Config{
		Endpoint:    cfg.Severity.Endpoint,
		TimeoutSecs: cfg.Severity.TimeoutSecs,
	}, logger)

	return &Context{
		Config:     cfg,
		Logger:     logger,
		Index:      idx,
		Scorer:     scorer,
		Summarizer: summarizer.NewFrequencySummarizer(),
		Store:      store,
	}, nil
}

// OpenStore opens only the cache backend, for maintenance commands that
// must not trigger an index build.
func OpenStore(ctx context.Context, cfg *config.AppConfig) (domain.CacheStore, error) {
	return cachestore.New(ctx, cfg.Cache)
}

// TopK returns the configured default result count.
func (c *Context) TopK() int {
	if c.Config == nil || c.Config.Retrieval.TopK <= 0 {
		return index.DefaultTopK
	}
	return c.Config.Retrieval.TopK
}

// Close releases the cache store.
func (c *Context) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}
