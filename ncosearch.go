// Package ncosearch provides multilingual semantic search over the NCO-2015
// occupation taxonomy.
//
// The service embeds every occupation record once, serves queries from an
// immutable in-memory snapshot, and rescues low-confidence queries through
// synonym expansion, offline translation, and lexical fallbacks.
//
// Basic usage:
//
//	client, err := ncosearch.New(
//	    ncosearch.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Reindex.Bootstrap(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	response, err := client.Search.Search(ctx, query, userAgent)
package ncosearch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/shramsetu/ncosearch/application/service"
	"github.com/shramsetu/ncosearch/domain/search"
	infraaudit "github.com/shramsetu/ncosearch/infrastructure/audit"
	"github.com/shramsetu/ncosearch/infrastructure/catalog"
	infraindex "github.com/shramsetu/ncosearch/infrastructure/index"
	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/config"
	"github.com/shramsetu/ncosearch/internal/database"
	"github.com/shramsetu/ncosearch/internal/log"
)

// Client is the main entry point for the ncosearch library.
//
// Access operations via struct fields:
//
//	client.Search.Search(ctx, query, userAgent)
//	client.Reindex.Reindex(ctx)
//	client.Stats.Report(ctx)
type Client struct {
	Search   *service.Searcher
	Reindex  *service.Reindexer
	Feedback *service.Feedback
	Stats    *service.Stats
	Admin    *service.Admin

	cfg        config.AppConfig
	version    string
	snapshots  *service.Snapshots
	auditStore *infraaudit.JSONLStore
	db         database.Database
	logger     *log.Logger
	closed     atomic.Bool
}

// New creates a Client: opens the audit stores, builds the embedding
// provider, and wires the services. No snapshot is loaded yet; call
// Reindex.Bootstrap before serving searches.
func New(opts ...Option) (*Client, error) {
	cc := newClientConfig()
	for _, opt := range opts {
		opt(cc)
	}

	cfg := cc.cfg
	logger := cc.logger
	if logger == nil {
		logger = log.NewLogger(cfg)
	}

	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare data directories: %w", err)
	}

	embedder := cc.embedder
	if embedder == nil {
		embedder = defaultEmbedder(cfg, logger)
	}

	auditStore, err := infraaudit.NewJSONLStore(cfg.LogsDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("open audit streams: %w", err)
	}

	db, err := database.NewDatabase(context.Background(), cfg.AuditDBPath())
	if err != nil {
		errClose := auditStore.Close()
		return nil, errors.Join(fmt.Errorf("open audit trail database: %w", err), errClose)
	}
	trail, err := infraaudit.NewTrailStore(db)
	if err != nil {
		errClose := errors.Join(auditStore.Close(), db.Close())
		return nil, errors.Join(fmt.Errorf("migrate audit trail: %w", err), errClose)
	}

	translator, err := service.NewTranslator()
	if err != nil {
		errClose := errors.Join(auditStore.Close(), db.Close())
		return nil, errors.Join(err, errClose)
	}

	catalogStore := catalog.NewFileStore(cfg.CatalogFile(), logger)
	artifacts := infraindex.NewArtifactStore(cfg.IndexDir())
	snapshots := service.NewSnapshots()

	searcherOpts := []service.SearcherOption{
		service.WithGate(searchGate(cfg)),
		service.WithAuditStore(auditStore),
		service.WithTranslation(cfg.EnableTranslation()),
		service.WithVersion(cc.version),
	}
	if cfg.DisableUALogging() {
		searcherOpts = append(searcherOpts, service.WithoutUserAgentLogging())
	}

	client := &Client{
		Search: service.NewSearcher(snapshots, embedder, translator, logger, searcherOpts...),
		Reindex: service.NewReindexer(catalogStore, embedder, artifacts, snapshots, logger,
			service.WithReindexTimeout(cfg.ReindexTimeout()),
			service.WithEmbedBatchSize(cfg.Embedding().BatchSize()),
			service.WithTrail(trail)),
		Feedback: service.NewFeedback(auditStore, cfg.DisableUALogging()),
		Stats:    service.NewStats(auditStore),
		Admin:    service.NewAdmin(catalogStore, auditStore, trail, logger),

		cfg:        cfg,
		version:    cc.version,
		snapshots:  snapshots,
		auditStore: auditStore,
		db:         db,
		logger:     logger,
	}

	logger.Info("client ready",
		"model", embedder.Model(), "catalog", cfg.CatalogFile(), "data_dir", cfg.DataDir())
	return client, nil
}

// Config returns the effective configuration.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Version returns the service version stamped at construction.
func (c *Client) Version() string {
	return c.version
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger {
	return c.logger
}

// Snapshots returns the snapshot manager, used by health reporting.
func (c *Client) Snapshots() *service.Snapshots {
	return c.snapshots
}

// Close flushes the audit streams and closes the trail database.
// Idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return errors.Join(c.auditStore.Close(), c.db.Close())
}

// defaultEmbedder picks the provider from configuration: the remote
// OpenAI-compatible endpoint when one is configured, the deterministic hash
// embedder otherwise.
func defaultEmbedder(cfg config.AppConfig, logger *log.Logger) provider.Embedder {
	if cfg.Embedding().IsRemote() {
		logger.Info("using remote embedding endpoint",
			"base_url", cfg.Embedding().BaseURL(), "model", cfg.EmbedModel())
		return provider.NewOpenAIEmbedder(cfg.Embedding(), cfg.EmbedModel(),
			provider.WithMaxRetries(cfg.Embedding().MaxRetries()))
	}

	logger.Info("no embedding endpoint configured, using hash embedder", "model", cfg.EmbedModel())
	return provider.NewHashEmbedder(cfg.EmbedModel(), provider.DefaultHashDimensions)
}

func searchGate(cfg config.AppConfig) search.Gate {
	return search.NewGate(cfg.LowConfTopSim(), cfg.LowConfSoftmax())
}
