// Package occupation provides domain types for NCO-2015 occupation records.
package occupation

import (
	"regexp"
	"strings"
)

// CodePattern matches a valid NCO occupation code: four digits, a dot, four digits.
var CodePattern = regexp.MustCompile(`^\d{4}\.\d{4}$`)

// ValidCode reports whether code is a well-formed NCO occupation code.
func ValidCode(code string) bool {
	return CodePattern.MatchString(code)
}

// Hierarchy places a record inside the NCO classification tree.
type Hierarchy struct {
	divisionCode    string
	subDivisionCode string
	minorGroupCode  string
	unitGroupCode   string
	divisionName    string
}

// NewHierarchy creates a new Hierarchy.
func NewHierarchy(divisionCode, subDivisionCode, minorGroupCode, unitGroupCode, divisionName string) Hierarchy {
	return Hierarchy{
		divisionCode:    divisionCode,
		subDivisionCode: subDivisionCode,
		minorGroupCode:  minorGroupCode,
		unitGroupCode:   unitGroupCode,
		divisionName:    divisionName,
	}
}

// DivisionCode returns the one-digit division code.
func (h Hierarchy) DivisionCode() string { return h.divisionCode }

// SubDivisionCode returns the two-digit sub-division code.
func (h Hierarchy) SubDivisionCode() string { return h.subDivisionCode }

// MinorGroupCode returns the three-digit minor group code.
func (h Hierarchy) MinorGroupCode() string { return h.minorGroupCode }

// UnitGroupCode returns the four-digit unit group code.
func (h Hierarchy) UnitGroupCode() string { return h.unitGroupCode }

// DivisionName returns the human-readable division name.
func (h Hierarchy) DivisionName() string { return h.divisionName }

// IsZero reports whether the hierarchy is unset.
func (h Hierarchy) IsZero() bool {
	return h == Hierarchy{}
}

// Record is a single occupation entry from the classification taxonomy.
// Records are immutable once constructed; the catalog replaces them
// wholesale at reindex.
type Record struct {
	code           string
	title          string
	description    string
	synonyms       []string
	examples       []string
	hierarchy      Hierarchy
	searchKeywords []string
	searchableText string
}

// NewRecord creates a new Record. Synonyms are deduplicated case-sensitively
// while preserving first-seen order; examples keep their order.
func NewRecord(code, title, description string, synonyms, examples []string) Record {
	return Record{
		code:        code,
		title:       title,
		description: description,
		synonyms:    dedupe(synonyms),
		examples:    copyStrings(examples),
	}
}

// WithHierarchy returns a copy of the record with the hierarchy set.
func (r Record) WithHierarchy(h Hierarchy) Record {
	r.hierarchy = h
	return r
}

// WithSearchKeywords returns a copy of the record with precomputed keywords.
func (r Record) WithSearchKeywords(keywords []string) Record {
	r.searchKeywords = copyStrings(keywords)
	return r
}

// WithSearchableText returns a copy of the record with curated passage text.
func (r Record) WithSearchableText(text string) Record {
	r.searchableText = text
	return r
}

// WithSynonyms returns a copy of the record with the synonym set replaced.
func (r Record) WithSynonyms(synonyms []string) Record {
	r.synonyms = dedupe(synonyms)
	return r
}

// Code returns the NCO code, the record's primary key.
func (r Record) Code() string { return r.code }

// Title returns the display title.
func (r Record) Title() string { return r.title }

// Description returns the free-text description, possibly empty.
func (r Record) Description() string { return r.description }

// Synonyms returns the synonym set in first-seen order.
func (r Record) Synonyms() []string { return copyStrings(r.synonyms) }

// Examples returns the ordered example phrases.
func (r Record) Examples() []string { return copyStrings(r.examples) }

// Hierarchy returns the classification hierarchy, zero if absent.
func (r Record) Hierarchy() Hierarchy { return r.hierarchy }

// SearchKeywords returns the precomputed keyword set, nil if absent.
func (r Record) SearchKeywords() []string { return copyStrings(r.searchKeywords) }

// SearchableText returns the curated passage text, empty if absent.
func (r Record) SearchableText() string { return r.searchableText }

// PassageText builds the text embedded for this record. Curated searchable
// text wins; otherwise title, description, synonyms and examples are joined
// with single spaces. Callers add the model's "passage: " prefix.
func (r Record) PassageText() string {
	if r.searchableText != "" {
		return r.searchableText
	}

	parts := []string{r.title}
	if r.description != "" {
		parts = append(parts, r.description)
	}
	if len(r.synonyms) > 0 {
		parts = append(parts, "Synonyms: "+strings.Join(r.synonyms, ", "))
	}
	if len(r.examples) > 0 {
		parts = append(parts, "Examples: "+strings.Join(r.examples, ", "))
	}
	return strings.Join(parts, " ")
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	copy(result, values)
	return result
}
