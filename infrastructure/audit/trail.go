package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shramsetu/ncosearch/internal/database"
)

// AdminAction names one audited admin operation.
type AdminAction string

// Audited admin actions.
const (
	ActionUpdateSynonyms AdminAction = "update_synonyms"
	ActionReindex        AdminAction = "reindex"
	ActionDeleteLogs     AdminAction = "delete_logs"
	ActionPurgeLogs      AdminAction = "purge_logs"
)

// TrailModel is the GORM model for one admin trail row.
type TrailModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Timestamp time.Time `gorm:"column:timestamp;index"`
	Action    string    `gorm:"column:action;index"`
	Detail    string    `gorm:"column:detail"`
	Success   bool      `gorm:"column:success"`
}

// TableName returns the trail table name.
func (TrailModel) TableName() string { return "admin_trail" }

// TrailEntry is one recorded admin action.
type TrailEntry struct {
	id        string
	timestamp time.Time
	action    AdminAction
	detail    string
	success   bool
}

// ID returns the entry's unique identifier.
func (e TrailEntry) ID() string { return e.id }

// Timestamp returns when the action was recorded.
func (e TrailEntry) Timestamp() time.Time { return e.timestamp }

// Action returns the audited action name.
func (e TrailEntry) Action() AdminAction { return e.action }

// Detail returns the free-text action detail.
func (e TrailEntry) Detail() string { return e.detail }

// Success reports whether the action succeeded.
func (e TrailEntry) Success() bool { return e.success }

// TrailStore records admin actions in SQLite.
type TrailStore struct {
	db database.Database
}

// NewTrailStore creates the trail table when missing.
func NewTrailStore(db database.Database) (*TrailStore, error) {
	if err := db.GORM().AutoMigrate(&TrailModel{}); err != nil {
		return nil, fmt.Errorf("migrate admin trail: %w", err)
	}
	return &TrailStore{db: db}, nil
}

// Record appends one admin action to the trail.
func (s *TrailStore) Record(ctx context.Context, action AdminAction, detail string, success bool) error {
	model := TrailModel{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Action:    string(action),
		Detail:    detail,
		Success:   success,
	}
	if result := s.db.Session(ctx).Create(&model); result.Error != nil {
		return fmt.Errorf("record admin action: %w", result.Error)
	}
	return nil
}

// Recent returns up to limit trail entries, newest first.
func (s *TrailStore) Recent(ctx context.Context, limit int) ([]TrailEntry, error) {
	var models []TrailModel
	// rowid breaks timestamp ties in insertion order.
	result := s.db.Session(ctx).
		Order("timestamp DESC, rowid DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("list admin trail: %w", result.Error)
	}

	entries := make([]TrailEntry, len(models))
	for i, m := range models {
		entries[i] = TrailEntry{
			id:        m.ID,
			timestamp: m.Timestamp,
			action:    AdminAction(m.Action),
			detail:    m.Detail,
			success:   m.Success,
		}
	}
	return entries, nil
}

// CountSince returns how many actions were recorded at or after the cutoff.
func (s *TrailStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	result := s.db.Session(ctx).
		Model(&TrailModel{}).
		Where("timestamp >= ?", since).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("count admin trail: %w", result.Error)
	}
	return count, nil
}
