// Package audit provides the append-only search and feedback log entries
// and the store contract for reading them back.
package audit

import (
	"time"

	"github.com/shramsetu/ncosearch/domain/search"
)

// Stream identifies one append-only log stream.
type Stream string

// Stream names.
const (
	StreamSearch   Stream = "search"
	StreamFeedback Stream = "feedback"
)

// ValidStream reports whether the name is a known stream.
func ValidStream(s Stream) bool {
	return s == StreamSearch || s == StreamFeedback
}

// TopResult summarizes the best hit of a logged search.
type TopResult struct {
	Code       string  `json:"nco_code"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// SearchEntry is one line of the search stream. Entries are written once
// and never mutated.
type SearchEntry struct {
	Timestamp     time.Time       `json:"timestamp"`
	Query         string          `json:"query"`
	K             int             `json:"k"`
	Language      search.Language `json:"language"`
	LowConfidence bool            `json:"low_confidence"`
	Top           TopResult       `json:"top"`
	TopK          []string        `json:"top_k"`
	Model         string          `json:"model"`
	Version       string          `json:"version"`
	LatencyMS     int64           `json:"latency_ms"`
	UserAgent     string          `json:"user_agent,omitempty"`
}

// NewSearchEntry builds a SearchEntry from a pipeline response.
func NewSearchEntry(query search.Query, response search.Response, model, version string, latency time.Duration) SearchEntry {
	entry := SearchEntry{
		Timestamp:     time.Now().UTC(),
		Query:         query.Text(),
		K:             query.K(),
		Language:      response.Language(),
		LowConfidence: response.LowConfidence(),
		Model:         model,
		Version:       version,
		LatencyMS:     latency.Milliseconds(),
	}

	results := response.Results()
	entry.TopK = make([]string, len(results))
	for i, r := range results {
		entry.TopK[i] = r.Code()
	}
	if len(results) > 0 {
		entry.Top = TopResult{
			Code:       results[0].Code(),
			Score:      results[0].Score(),
			Confidence: results[0].Confidence(),
		}
	}
	return entry
}

// FeedbackEntry is one line of the feedback stream.
type FeedbackEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	Query          string    `json:"query"`
	SelectedCode   string    `json:"selected_code,omitempty"`
	ResultsHelpful bool      `json:"results_helpful"`
	Comments       string    `json:"comments,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
}

// NewFeedbackEntry creates a FeedbackEntry stamped with the current time.
func NewFeedbackEntry(query, selectedCode string, helpful bool, comments string) FeedbackEntry {
	return FeedbackEntry{
		Timestamp:      time.Now().UTC(),
		Query:          query,
		SelectedCode:   selectedCode,
		ResultsHelpful: helpful,
		Comments:       comments,
	}
}
