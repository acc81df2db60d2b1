package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shramsetu/ncosearch/domain/index"
	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/domain/search"
	infraaudit "github.com/shramsetu/ncosearch/infrastructure/audit"
	"github.com/shramsetu/ncosearch/infrastructure/catalog"
	infraindex "github.com/shramsetu/ncosearch/infrastructure/index"
	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// embedConcurrency bounds how many embedding batches run at once.
const embedConcurrency = 4

// ReindexReport summarizes a completed reindex.
type ReindexReport struct {
	Duration time.Duration
	Vectors  int
}

// Reindexer rebuilds the snapshot from the catalog file. Single-flight: a
// second caller fails fast with a conflict while a build is in progress,
// and searches keep serving the previous snapshot throughout.
type Reindexer struct {
	store      *catalog.FileStore
	embedder   provider.Embedder
	artifacts  *infraindex.ArtifactStore
	snapshots  *Snapshots
	trail      *infraaudit.TrailStore
	logger     *log.Logger
	timeout    time.Duration
	batchSize  int
	mu         sync.Mutex
	reindexing atomic.Bool
}

// ReindexerOption is a functional option for Reindexer.
type ReindexerOption func(*Reindexer)

// WithReindexTimeout bounds one reindex operation.
func WithReindexTimeout(d time.Duration) ReindexerOption {
	return func(r *Reindexer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithEmbedBatchSize sets how many passages are embedded per provider call.
func WithEmbedBatchSize(n int) ReindexerOption {
	return func(r *Reindexer) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithTrail records reindex outcomes in the admin trail.
func WithTrail(trail *infraaudit.TrailStore) ReindexerOption {
	return func(r *Reindexer) { r.trail = trail }
}

// NewReindexer creates a Reindexer.
func NewReindexer(store *catalog.FileStore, embedder provider.Embedder, artifacts *infraindex.ArtifactStore, snapshots *Snapshots, logger *log.Logger, opts ...ReindexerOption) *Reindexer {
	if logger == nil {
		logger = log.Default()
	}
	r := &Reindexer{
		store:     store,
		embedder:  embedder,
		artifacts: artifacts,
		snapshots: snapshots,
		logger:    logger,
		timeout:   5 * time.Minute,
		batchSize: 64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reindexing reports whether a build is in progress.
func (r *Reindexer) Reindexing() bool {
	return r.reindexing.Load()
}

// Reindex rebuilds every derived index from the catalog file and publishes
// the result. On any error, including timeout, the previous snapshot is
// retained unchanged.
func (r *Reindexer) Reindex(ctx context.Context) (ReindexReport, error) {
	if !r.mu.TryLock() {
		return ReindexReport{}, fmt.Errorf("%w: reindex already in progress", domain.ErrConflict)
	}
	defer r.mu.Unlock()

	r.reindexing.Store(true)
	defer r.reindexing.Store(false)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	report, err := r.build(ctx)
	r.recordTrail(ctx, report, err)
	if err != nil {
		r.logger.Error("reindex failed", "error", err, "duration", time.Since(start))
		return ReindexReport{}, err
	}

	r.logger.Info("reindex complete",
		"vectors", report.Vectors, "duration", report.Duration)
	return report, nil
}

func (r *Reindexer) build(ctx context.Context) (ReindexReport, error) {
	start := time.Now()

	cat, err := r.store.Load()
	if err != nil {
		return ReindexReport{}, fmt.Errorf("reindex: %w", err)
	}

	vectors, err := r.embedCatalog(ctx, cat)
	if err != nil {
		return ReindexReport{}, fmt.Errorf("reindex: %w", err)
	}

	snap, err := r.assemble(cat, vectors, time.Now().UTC())
	if err != nil {
		return ReindexReport{}, fmt.Errorf("reindex: %w", err)
	}

	// Persisting artifacts is best-effort: a write failure costs a rebuild
	// at next startup, not this snapshot.
	if r.artifacts != nil {
		meta := infraindex.Meta{Model: r.embedder.Model(), BuiltAt: snap.BuiltAt()}
		if err := r.artifacts.Save(vectors, meta); err != nil {
			r.logger.Warn("persist index artifacts failed", "error", err)
		}
	}

	r.snapshots.Publish(snap)

	return ReindexReport{Duration: time.Since(start), Vectors: len(vectors)}, nil
}

// embedCatalog embeds every record's passage text in batches, preserving
// catalog order.
func (r *Reindexer) embedCatalog(ctx context.Context, cat occupation.Catalog) ([][]float32, error) {
	records := cat.Records()
	passages := make([]string, len(records))
	for i, rec := range records {
		passages[i] = "passage: " + rec.PassageText()
	}

	vectors := make([][]float32, len(passages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(passages); start += r.batchSize {
		end := start + r.batchSize
		if end > len(passages) {
			end = len(passages)
		}

		start, end := start, end
		g.Go(func() error {
			batch, err := r.embedder.Embed(gctx, passages[start:end])
			if err != nil {
				return fmt.Errorf("embed batch %d..%d: %w", start, end, err)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

func (r *Reindexer) assemble(cat occupation.Catalog, vectors [][]float32, builtAt time.Time) (*search.Snapshot, error) {
	flat := index.NewFlat()
	if err := flat.BuildFrom(vectors); err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}

	return search.NewSnapshot(
		cat,
		flat,
		index.BuildInverted(cat),
		index.BuildTitles(cat),
		r.embedder.Model(),
		builtAt,
	), nil
}

func (r *Reindexer) recordTrail(ctx context.Context, report ReindexReport, buildErr error) {
	if r.trail == nil {
		return
	}
	detail := fmt.Sprintf("%d vectors", report.Vectors)
	if buildErr != nil {
		detail = buildErr.Error()
	}
	if err := r.trail.Record(ctx, infraaudit.ActionReindex, detail, buildErr == nil); err != nil {
		r.logger.Warn("record reindex trail failed", "error", err)
	}
}

// Bootstrap publishes the first snapshot at startup. Persisted artifacts are
// reused when their model and count still match the catalog; otherwise the
// catalog is re-embedded.
func (r *Reindexer) Bootstrap(ctx context.Context) error {
	cat, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if snap, ok := r.tryArtifacts(cat); ok {
		r.snapshots.Publish(snap)
		r.logger.Info("snapshot restored from artifacts", "vectors", snap.Vectors().Len())
		return nil
	}

	_, err = r.Reindex(ctx)
	return err
}

func (r *Reindexer) tryArtifacts(cat occupation.Catalog) (*search.Snapshot, bool) {
	if r.artifacts == nil {
		return nil, false
	}

	vectors, meta, err := r.artifacts.Load()
	if err != nil {
		r.logger.Debug("no reusable index artifacts", "error", err)
		return nil, false
	}
	if meta.Model != r.embedder.Model() || meta.Count != cat.Len() {
		r.logger.Info("index artifacts stale, rebuilding",
			"artifact_model", meta.Model, "artifact_count", meta.Count, "catalog", cat.Len())
		return nil, false
	}

	snap, err := r.assemble(cat, vectors, meta.BuiltAt)
	if err != nil {
		r.logger.Warn("index artifacts unusable, rebuilding", "error", err)
		return nil, false
	}
	return snap, true
}
