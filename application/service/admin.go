package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shramsetu/ncosearch/domain/audit"
	infraaudit "github.com/shramsetu/ncosearch/infrastructure/audit"
	"github.com/shramsetu/ncosearch/infrastructure/catalog"
	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// Admin orchestrates the mutating and inspection operations behind the
// admin gate: synonym edits, log reads, and log retention.
type Admin struct {
	catalogStore *catalog.FileStore
	auditStore   audit.Store
	trail        *infraaudit.TrailStore
	logger       *log.Logger
}

// NewAdmin creates an Admin service. The trail is optional.
func NewAdmin(catalogStore *catalog.FileStore, auditStore audit.Store, trail *infraaudit.TrailStore, logger *log.Logger) *Admin {
	if logger == nil {
		logger = log.Default()
	}
	return &Admin{
		catalogStore: catalogStore,
		auditStore:   auditStore,
		trail:        trail,
		logger:       logger,
	}
}

// UpdateSynonyms applies a batch of synonym edits to the catalog file.
// Edits take effect in search results only after the next reindex.
func (a *Admin) UpdateSynonyms(ctx context.Context, updates []catalog.SynonymUpdate) (catalog.SynonymUpdateResult, error) {
	if len(updates) == 0 {
		return catalog.SynonymUpdateResult{}, fmt.Errorf("%w: no updates supplied", domain.ErrValidation)
	}

	result, err := a.catalogStore.ApplySynonymUpdates(updates)
	a.record(ctx, infraaudit.ActionUpdateSynonyms,
		fmt.Sprintf("%d updated, %d invalid", result.Updated(), len(result.InvalidCodes())), err == nil)
	if err != nil {
		return catalog.SynonymUpdateResult{}, err
	}
	return result, nil
}

// ReadLogs returns up to limit entries of one stream, newest first.
func (a *Admin) ReadLogs(ctx context.Context, stream audit.Stream, limit int) ([]map[string]any, error) {
	if !audit.ValidStream(stream) {
		return nil, fmt.Errorf("%w: unknown log stream %q", domain.ErrValidation, stream)
	}
	return a.auditStore.ReadReverse(ctx, stream, limit)
}

// DeleteLogs removes entries at or after the cutoff from both streams.
func (a *Admin) DeleteLogs(ctx context.Context, since time.Time) error {
	err := a.auditStore.DeleteSince(ctx, since)
	a.record(ctx, infraaudit.ActionDeleteLogs, "since "+since.UTC().Format(time.RFC3339), err == nil)
	return err
}

// PurgeLogs removes both streams entirely.
func (a *Admin) PurgeLogs(ctx context.Context) error {
	err := a.auditStore.Purge(ctx)
	a.record(ctx, infraaudit.ActionPurgeLogs, "", err == nil)
	return err
}

func (a *Admin) record(ctx context.Context, action infraaudit.AdminAction, detail string, success bool) {
	if a.trail == nil {
		return
	}
	if err := a.trail.Record(ctx, action, detail, success); err != nil {
		a.logger.Warn("record admin trail failed", "action", action, "error", err)
	}
}
