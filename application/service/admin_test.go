package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/infrastructure/catalog"
	"github.com/shramsetu/ncosearch/internal/domain"
)

func newTestAdmin(t *testing.T) (*Admin, *memAuditStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nco_data.json")
	require.NoError(t, os.WriteFile(path, []byte(reindexCatalog), 0o644))

	store := &memAuditStore{}
	return NewAdmin(catalog.NewFileStore(path, nil), store, nil, nil), store
}

func TestAdmin_UpdateSynonyms(t *testing.T) {
	admin, _ := newTestAdmin(t)

	result, err := admin.UpdateSynonyms(context.Background(), []catalog.SynonymUpdate{
		catalog.NewSynonymUpdate("7212.0100", []string{"welding machine operator"}, nil),
		catalog.NewSynonymUpdate("0000.0000", []string{"nope"}, nil),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated())
	assert.Equal(t, []string{"0000.0000"}, result.InvalidCodes())
	assert.True(t, result.RequiresReindex())
}

func TestAdmin_UpdateSynonyms_Empty(t *testing.T) {
	admin, _ := newTestAdmin(t)

	_, err := admin.UpdateSynonyms(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdmin_ReadLogs(t *testing.T) {
	admin, _ := newTestAdmin(t)

	_, err := admin.ReadLogs(context.Background(), audit.StreamSearch, 10)
	require.NoError(t, err)

	_, err = admin.ReadLogs(context.Background(), audit.Stream("nope"), 10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdmin_LogRetention(t *testing.T) {
	admin, _ := newTestAdmin(t)

	require.NoError(t, admin.DeleteLogs(context.Background(), time.Now().Add(-time.Hour)))
	require.NoError(t, admin.PurgeLogs(context.Background()))
}
