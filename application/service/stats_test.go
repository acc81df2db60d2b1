package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shramsetu/ncosearch/domain/audit"
)

// statsStubStore serves canned entries per stream.
type statsStubStore struct {
	memAuditStore
	entries map[audit.Stream][]map[string]any
}

func (s *statsStubStore) ReadReverse(_ context.Context, stream audit.Stream, _ int) ([]map[string]any, error) {
	return s.entries[stream], nil
}

func searchLine(ts time.Time, query, code string, low bool, latency float64) map[string]any {
	return map[string]any{
		"timestamp":      ts.UTC().Format(time.RFC3339),
		"query":          query,
		"low_confidence": low,
		"latency_ms":     latency,
		"top":            map[string]any{"nco_code": code},
	}
}

func TestStats_Report(t *testing.T) {
	now := time.Now().UTC()
	store := &statsStubStore{entries: map[audit.Stream][]map[string]any{
		audit.StreamSearch: {
			searchLine(now, "welder", "7212.0100", false, 12),
			searchLine(now.Add(-time.Hour), "Welder", "7212.0100", true, 20),
			searchLine(now.Add(-48*time.Hour), "tailor", "7531.0100", false, 40),
		},
		audit.StreamFeedback: {
			{"results_helpful": true},
			{"results_helpful": false},
		},
	}}

	report, err := NewStats(store).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Last24h.TotalSearches)
	assert.Equal(t, 0.5, report.Last24h.LowConfidenceRate)

	assert.Equal(t, 3, report.AllTime.TotalSearches)
	assert.Equal(t, 0.333, report.AllTime.LowConfidenceRate)
	assert.Equal(t, 24.0, report.AllTime.AvgLatencyMS)
	assert.Equal(t, 0.5, report.AllTime.FeedbackHelpfulRate)

	// Queries are counted case-insensitively; ties rank by value.
	require.NotEmpty(t, report.AllTime.TopQueries)
	assert.Equal(t, CountedValue{Value: "welder", Count: 2}, report.AllTime.TopQueries[0])
	assert.Equal(t, CountedValue{Value: "tailor", Count: 1}, report.AllTime.TopQueries[1])

	require.NotEmpty(t, report.AllTime.TopCodes)
	assert.Equal(t, CountedValue{Value: "7212.0100", Count: 2}, report.AllTime.TopCodes[0])
}

func TestStats_Report_Empty(t *testing.T) {
	store := &statsStubStore{entries: map[audit.Stream][]map[string]any{}}

	report, err := NewStats(store).Report(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.Last24h.TotalSearches)
	assert.Zero(t, report.AllTime.TotalSearches)
	assert.Zero(t, report.AllTime.LowConfidenceRate)
	assert.Zero(t, report.AllTime.AvgLatencyMS)
	assert.Empty(t, report.AllTime.TopQueries)
}

func TestStats_Report_SkipsMalformedEntries(t *testing.T) {
	store := &statsStubStore{entries: map[audit.Stream][]map[string]any{
		audit.StreamSearch: {
			{"query": "welder"}, // no timestamp, no latency
			{"timestamp": "not-a-time", "low_confidence": true},
		},
	}}

	report, err := NewStats(store).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.AllTime.TotalSearches)
	assert.Zero(t, report.Last24h.TotalSearches)
	assert.Zero(t, report.AllTime.AvgLatencyMS)
}
