package index

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/shramsetu/ncosearch/domain/occupation"
)

// Fuzzy fallback bounds.
const (
	FuzzyMinRatio   = 0.6
	FuzzyMaxResults = 5
)

// TitleMatch is a fuzzy title hit.
type TitleMatch struct {
	ordinal int
	ratio   float64
}

// NewTitleMatch creates a new TitleMatch.
func NewTitleMatch(ordinal int, ratio float64) TitleMatch {
	return TitleMatch{ordinal: ordinal, ratio: ratio}
}

// Ordinal returns the catalog position of the matched record.
func (m TitleMatch) Ordinal() int { return m.ordinal }

// Ratio returns the similarity ratio in [0,1].
func (m TitleMatch) Ratio() float64 { return m.ratio }

type titleEntry struct {
	titleLC string
	ordinal int
}

// Titles is the lowercased-title index backing exact and fuzzy title
// lookups. Entries are kept in catalog order so scans are deterministic.
type Titles struct {
	entries []titleEntry
	byTitle map[string]int
}

// BuildTitles indexes every catalog record by lowercased title, keeping the
// first record on the rare title collision.
func BuildTitles(catalog occupation.Catalog) Titles {
	entries := make([]titleEntry, 0, catalog.Len())
	byTitle := make(map[string]int, catalog.Len())

	for ordinal, record := range catalog.Records() {
		titleLC := strings.ToLower(record.Title())
		if _, exists := byTitle[titleLC]; exists {
			continue
		}
		byTitle[titleLC] = ordinal
		entries = append(entries, titleEntry{titleLC: titleLC, ordinal: ordinal})
	}

	return Titles{entries: entries, byTitle: byTitle}
}

// Len returns the number of distinct titles.
func (t Titles) Len() int { return len(t.entries) }

// Exact returns the ordinal for a lowercased title.
func (t Titles) Exact(titleLC string) (int, bool) {
	ordinal, ok := t.byTitle[titleLC]
	return ordinal, ok
}

// Fuzzy scans every title and returns those whose similarity ratio with the
// lowercased query is at least FuzzyMinRatio, best first, capped at
// FuzzyMaxResults. Ties keep catalog order.
func (t Titles) Fuzzy(query string) []TitleMatch {
	queryLC := strings.ToLower(query)
	if queryLC == "" {
		return []TitleMatch{}
	}

	matches := make([]TitleMatch, 0, FuzzyMaxResults)
	for _, entry := range t.entries {
		ratio := Ratio(queryLC, entry.titleLC)
		if ratio >= FuzzyMinRatio {
			matches = append(matches, NewTitleMatch(entry.ordinal, ratio))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ratio > matches[j].ratio
	})

	if len(matches) > FuzzyMaxResults {
		matches = matches[:FuzzyMaxResults]
	}
	return matches
}

// Ratio is the normalized Levenshtein similarity between two strings:
// 1 - distance/maxlen, in [0,1].
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}

	longest := la
	if lb > longest {
		longest = lb
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
