package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shramsetu/ncosearch/domain/audit"
)

// statsScanLimit caps how many log entries one stats aggregation reads.
const statsScanLimit = 100000

// topListSize is the length of the top-queries and top-codes rankings.
const topListSize = 10

// CountedValue is one ranked value with its occurrence count.
type CountedValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// WindowStats aggregates searches over one time window.
type WindowStats struct {
	TotalSearches     int     `json:"total_searches"`
	LowConfidenceRate float64 `json:"low_confidence_rate"`
}

// AllTimeStats aggregates the full search and feedback history.
type AllTimeStats struct {
	TotalSearches       int            `json:"total_searches"`
	LowConfidenceRate   float64        `json:"low_confidence_rate"`
	AvgLatencyMS        float64        `json:"avg_latency_ms"`
	FeedbackHelpfulRate float64        `json:"feedback_helpful_rate"`
	TopQueries          []CountedValue `json:"top_queries"`
	TopCodes            []CountedValue `json:"top_codes"`
}

// StatsReport is the aggregated service usage report.
type StatsReport struct {
	Last24h WindowStats  `json:"last_24h"`
	AllTime AllTimeStats `json:"all_time"`
}

// Stats aggregates the audit streams into usage statistics.
type Stats struct {
	store audit.Store
}

// NewStats creates a Stats service.
func NewStats(store audit.Store) *Stats {
	return &Stats{store: store}
}

// Report reads both streams and computes the 24-hour and all-time
// aggregates.
func (s *Stats) Report(ctx context.Context) (StatsReport, error) {
	searches, err := s.store.ReadReverse(ctx, audit.StreamSearch, statsScanLimit)
	if err != nil {
		return StatsReport{}, err
	}
	feedback, err := s.store.ReadReverse(ctx, audit.StreamFeedback, statsScanLimit)
	if err != nil {
		return StatsReport{}, err
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	var (
		total24h, lowConf24h int
		total, lowConf       int
		latencySum           float64
		latencyCount         int
		queryCounts          = map[string]int{}
		codeCounts           = map[string]int{}
	)

	for _, entry := range searches {
		total++
		low, _ := entry["low_confidence"].(bool)
		if low {
			lowConf++
		}

		if ts, ok := entryTime(entry); ok && ts.After(cutoff) {
			total24h++
			if low {
				lowConf24h++
			}
		}

		if latency, ok := entry["latency_ms"].(float64); ok {
			latencySum += latency
			latencyCount++
		}
		if query, ok := entry["query"].(string); ok && query != "" {
			queryCounts[strings.ToLower(query)]++
		}
		if top, ok := entry["top"].(map[string]any); ok {
			if code, ok := top["nco_code"].(string); ok && code != "" {
				codeCounts[code]++
			}
		}
	}

	var helpful, totalFeedback int
	for _, entry := range feedback {
		totalFeedback++
		if ok, _ := entry["results_helpful"].(bool); ok {
			helpful++
		}
	}

	report := StatsReport{
		Last24h: WindowStats{
			TotalSearches:     total24h,
			LowConfidenceRate: round3(rate(lowConf24h, total24h)),
		},
		AllTime: AllTimeStats{
			TotalSearches:       total,
			LowConfidenceRate:   round3(rate(lowConf, total)),
			AvgLatencyMS:        round1(avg(latencySum, latencyCount)),
			FeedbackHelpfulRate: round3(rate(helpful, totalFeedback)),
			TopQueries:          topCounted(queryCounts),
			TopCodes:            topCounted(codeCounts),
		},
	}
	return report, nil
}

func entryTime(entry map[string]any) (time.Time, bool) {
	raw, ok := entry["timestamp"].(string)
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func avg(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// topCounted ranks counts descending, ties by value ascending, capped at
// topListSize.
func topCounted(counts map[string]int) []CountedValue {
	ranked := make([]CountedValue, 0, len(counts))
	for value, count := range counts {
		ranked = append(ranked, CountedValue{Value: value, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}
	return ranked
}
