package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/shramsetu/ncosearch/internal/domain"
)

func TestNewQuery_Bounds(t *testing.T) {
	if _, err := NewQuery("w", 1); err != nil {
		t.Errorf("single-character query: %v", err)
	}

	long := strings.Repeat("x", 500)
	if _, err := NewQuery(long, 5); err != nil {
		t.Errorf("500-character query: %v", err)
	}

	if _, err := NewQuery(long+"x", 5); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("501-character query: expected validation error, got %v", err)
	}

	if _, err := NewQuery("", 5); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty query: expected validation error, got %v", err)
	}

	if _, err := NewQuery("welder", 21); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("k=21: expected validation error, got %v", err)
	}

	if _, err := NewQuery("welder", -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("k=-1: expected validation error, got %v", err)
	}
}

func TestNewQuery_LengthIsCountedInRunes(t *testing.T) {
	// 500 Devanagari characters exceed 500 bytes but are a valid query.
	long := strings.Repeat("व", 500)
	if _, err := NewQuery(long, 5); err != nil {
		t.Errorf("500-rune Devanagari query: %v", err)
	}
}

func TestNewQuery_DefaultK(t *testing.T) {
	q, err := NewQuery("welder", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.K() != DefaultK {
		t.Errorf("expected default k %d, got %d", DefaultK, q.K())
	}
}

func TestQuery_WithText_KeepsOptions(t *testing.T) {
	q, err := NewQuery("दर्जी", 3, WithLanguage(LanguageHindi), WithDivisionFilter("7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rescued := q.WithText("tailor")
	if rescued.Text() != "tailor" {
		t.Errorf("expected rewritten text, got %q", rescued.Text())
	}
	if rescued.K() != 3 || rescued.Language() != LanguageHindi || rescued.DivisionCode() != "7" {
		t.Error("expected k, language, and filters preserved")
	}
}
