// Package search provides domain types for the occupation search pipeline:
// queries, ranked results, confidence gating, and language detection.
package search

import (
	"fmt"
	"unicode/utf8"

	"github.com/shramsetu/ncosearch/internal/domain"
)

// Query bounds.
const (
	MaxQueryLength = 500
	MinK           = 1
	MaxK           = 20
	DefaultK       = 5
)

// Query is a validated search request.
type Query struct {
	text           string
	k              int
	language       Language
	divisionCode   string
	minorGroupCode string
}

// QueryOption configures a Query.
type QueryOption func(*Query)

// WithLanguage pins the query language instead of detecting it.
func WithLanguage(lang Language) QueryOption {
	return func(q *Query) { q.language = lang }
}

// WithDivisionFilter restricts results to one NCO division.
func WithDivisionFilter(code string) QueryOption {
	return func(q *Query) { q.divisionCode = code }
}

// WithMinorGroupFilter restricts results to one NCO minor group.
func WithMinorGroupFilter(code string) QueryOption {
	return func(q *Query) { q.minorGroupCode = code }
}

// NewQuery validates and creates a Query. The text must be 1..500 characters
// and k must be 1..20; k == 0 selects the default of 5.
func NewQuery(text string, k int, opts ...QueryOption) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("%w: query must not be empty", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query length %d exceeds %d characters", domain.ErrValidation, n, MaxQueryLength)
	}
	if k == 0 {
		k = DefaultK
	}
	if k < MinK || k > MaxK {
		return Query{}, fmt.Errorf("%w: k must be between %d and %d, got %d", domain.ErrValidation, MinK, MaxK, k)
	}

	q := Query{text: text, k: k}
	for _, opt := range opts {
		opt(&q)
	}
	return q, nil
}

// Text returns the raw query text.
func (q Query) Text() string { return q.text }

// K returns the requested result count.
func (q Query) K() int { return q.k }

// Language returns the caller-supplied language, empty when undetected.
func (q Query) Language() Language { return q.language }

// DivisionCode returns the division filter, empty when unset.
func (q Query) DivisionCode() string { return q.divisionCode }

// MinorGroupCode returns the minor group filter, empty when unset.
func (q Query) MinorGroupCode() string { return q.minorGroupCode }

// WithText returns a copy of the query with different text, keeping the
// original's k, language, and filters. Used by the rescue stages.
func (q Query) WithText(text string) Query {
	q.text = text
	return q
}
