package v1

import (
	"reflect"
	"testing"
)

func TestBasicSearchEntries(t *testing.T) {
	entries := []map[string]any{
		{
			"timestamp":      "2026-08-01T10:00:00Z",
			"query":          "welder",
			"language":       "en",
			"low_confidence": false,
			"top":            map[string]any{"nco_code": "7212.0100", "score": 0.81, "confidence": 0.7},
			"model":          "test-model",
			"latency_ms":     12,
		},
	}

	got := basicSearchEntries(entries)

	want := []map[string]any{
		{
			"timestamp":      "2026-08-01T10:00:00Z",
			"query":          "welder",
			"language":       "en",
			"low_confidence": false,
			"top_nco_code":   "7212.0100",
			"top_score":      0.81,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("basicSearchEntries() = %v, want %v", got, want)
	}
}

func TestBasicSearchEntries_MissingTop(t *testing.T) {
	entries := []map[string]any{
		{"timestamp": "2026-08-01T10:00:00Z", "query": "welder"},
	}

	got := basicSearchEntries(entries)

	if _, ok := got[0]["top_nco_code"]; ok {
		t.Error("top_nco_code set without a top block")
	}
	if got[0]["query"] != "welder" {
		t.Errorf("query = %v, want welder", got[0]["query"])
	}
}
