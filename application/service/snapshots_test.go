package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/domain"
)

func TestSnapshots_Empty(t *testing.T) {
	snapshots := NewSnapshots()

	assert.False(t, snapshots.Loaded())
	assert.Zero(t, snapshots.VectorsLoaded())

	_, err := snapshots.Current()
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestSnapshots_PublishAndReplace(t *testing.T) {
	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	snapshots := NewSnapshots()

	first := buildTestSnapshot(t, embedder, testRecords())
	snapshots.Publish(first)

	assert.True(t, snapshots.Loaded())
	assert.Equal(t, len(testRecords()), snapshots.VectorsLoaded())

	got, err := snapshots.Current()
	require.NoError(t, err)
	assert.Same(t, first, got)

	second := buildTestSnapshot(t, embedder, testRecords()[:2])
	snapshots.Publish(second)

	got, err = snapshots.Current()
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, 2, snapshots.VectorsLoaded())
}
