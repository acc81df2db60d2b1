package service

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shramsetu/ncosearch/domain/search"
)

//go:embed data/rescue.yaml
var rescueYAML []byte

//go:embed data/synonym_bank.yaml
var synonymBankYAML []byte

// maxAlternatives caps the alternate phrasings attached to a low-confidence
// response.
const maxAlternatives = 5

// maxSuggestions caps the guidance texts attached to a low-confidence
// response.
const maxSuggestions = 3

// rescueData mirrors data/rescue.yaml.
type rescueData struct {
	Translations     map[string]map[string]string `yaml:"translations"`
	SpellCorrections map[string]string            `yaml:"spell_corrections"`
	Suggestions      map[string][]string          `yaml:"suggestions"`
}

// Translator rescues low-confidence queries: offline term translation into
// English, alternate phrasings, spell corrections, and per-language guidance
// texts. All data is curated and fixed, not learned.
type Translator struct {
	translations map[search.Language]map[string]string
	corrections  map[string]string
	misspellings []string
	suggestions  map[search.Language][]string
	bank         SynonymBank
}

// NewTranslator loads the embedded rescue data.
func NewTranslator() (*Translator, error) {
	var data rescueData
	if err := yaml.Unmarshal(rescueYAML, &data); err != nil {
		return nil, fmt.Errorf("parse rescue data: %w", err)
	}

	bank, err := LoadSynonymBank()
	if err != nil {
		return nil, err
	}

	t := &Translator{
		translations: make(map[search.Language]map[string]string, len(data.Translations)),
		corrections:  data.SpellCorrections,
		suggestions:  make(map[search.Language][]string, len(data.Suggestions)),
		bank:         bank,
	}
	for wrong := range data.SpellCorrections {
		t.misspellings = append(t.misspellings, wrong)
	}
	sort.Strings(t.misspellings)
	for tag, terms := range data.Translations {
		t.translations[search.ParseLanguage(tag)] = terms
	}
	for tag, texts := range data.Suggestions {
		t.suggestions[search.ParseLanguage(tag)] = texts
	}
	return t, nil
}

// Translate maps known terms of the query into English word by word. The
// second return reports whether anything changed; unknown words pass
// through untouched.
func (t *Translator) Translate(query string, lang search.Language) (string, bool) {
	if lang == search.LanguageEnglish {
		return query, false
	}
	terms, ok := t.translations[lang]
	if !ok {
		return query, false
	}

	lower := strings.ToLower(query)
	if direct, ok := terms[lower]; ok {
		return direct, true
	}

	words := strings.Fields(query)
	changed := false
	for i, word := range words {
		if translated, ok := terms[strings.ToLower(word)]; ok {
			words[i] = translated
			changed = true
		}
	}
	if !changed {
		return query, false
	}
	return strings.Join(words, " "), true
}

// SpellCorrect replaces known misspellings in the lowercased query. The
// second return reports whether a correction applied.
func (t *Translator) SpellCorrect(query string) (string, bool) {
	lower := strings.ToLower(query)
	for _, wrong := range t.misspellings {
		if strings.Contains(lower, wrong) {
			return strings.ReplaceAll(lower, wrong, t.corrections[wrong]), true
		}
	}
	return "", false
}

// Alternatives generates alternate phrasings for a low-confidence query:
// spell corrections, synonym substitutions, suffix-stripped and qualified
// forms, plus variations of the English translation when one applies.
func (t *Translator) Alternatives(query string, lang search.Language) []string {
	seen := map[string]struct{}{strings.ToLower(query): {}}
	var alternatives []string

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		alternatives = append(alternatives, v)
	}

	if corrected, ok := t.SpellCorrect(query); ok {
		add(corrected)
	}
	for _, v := range t.variations(query) {
		add(v)
	}
	if translated, ok := t.Translate(query, lang); ok {
		add(strings.ToLower(translated))
		for _, v := range t.variations(translated) {
			add(v)
		}
	}

	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives
}

// variations substitutes bank synonyms and strips common agentive suffixes.
func (t *Translator) variations(query string) []string {
	lower := strings.ToLower(query)
	var out []string

	for _, term := range t.bank.Terms() {
		if !strings.Contains(lower, term) {
			continue
		}
		for _, synonym := range t.bank.Synonyms(term) {
			if v := strings.ReplaceAll(lower, term, synonym); v != lower {
				out = append(out, v)
			}
		}
	}

	for _, suffix := range []string{"er", "or", "ist", "ian"} {
		if strings.HasSuffix(lower, suffix) && len(lower) > len(suffix)+2 {
			out = append(out, strings.TrimSuffix(lower, suffix))
		}
	}

	return out
}

// Suggestions returns guidance texts in the query's language. Single-word
// queries additionally get a qualifier hint.
func (t *Translator) Suggestions(query string, lang search.Language) []string {
	texts, ok := t.suggestions[lang]
	if !ok {
		texts = t.suggestions[search.LanguageEnglish]
	}

	out := make([]string, len(texts))
	copy(out, texts)

	if len(strings.Fields(query)) == 1 {
		out = append(out, "Try adding qualifiers (e.g., 'senior', 'assistant', sector name)")
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// SynonymBank is the curated head-term expansion map used by the synonym
// expansion stage.
type SynonymBank struct {
	terms map[string][]string
	order []string
}

// LoadSynonymBank parses the embedded bank.
func LoadSynonymBank() (SynonymBank, error) {
	var terms map[string][]string
	if err := yaml.Unmarshal(synonymBankYAML, &terms); err != nil {
		return SynonymBank{}, fmt.Errorf("parse synonym bank: %w", err)
	}
	return NewSynonymBank(terms), nil
}

// NewSynonymBank creates a bank from an explicit mapping. Tests substitute
// their own.
func NewSynonymBank(terms map[string][]string) SynonymBank {
	order := make([]string, 0, len(terms))
	for term := range terms {
		order = append(order, term)
	}
	sort.Strings(order)
	return SynonymBank{terms: terms, order: order}
}

// Terms returns the head terms in deterministic order.
func (b SynonymBank) Terms() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Synonyms returns the alternate surface forms for a head term.
func (b SynonymBank) Synonyms(term string) []string {
	out := make([]string, len(b.terms[term]))
	copy(out, b.terms[term])
	return out
}

// Variants produces expanded query strings by substituting each head term
// that occurs in the query with each of its bank synonyms. Bounded by the
// bank size for the terms present.
func (b SynonymBank) Variants(query string) []string {
	lower := strings.ToLower(query)
	var variants []string
	seen := map[string]struct{}{lower: {}}

	for _, term := range b.order {
		if !strings.Contains(lower, term) {
			continue
		}
		for _, synonym := range b.terms[term] {
			v := strings.ReplaceAll(lower, term, synonym)
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			variants = append(variants, v)
		}
	}
	return variants
}
