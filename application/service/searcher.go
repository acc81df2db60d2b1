package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/domain/index"
	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/domain/search"
	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// Pipeline stage cutoffs.
const (
	// synonymExpansionCutoff: stage B runs only when the primary top
	// confidence falls below this.
	synonymExpansionCutoff = 0.5

	// lexicalFallbackCutoff: stage D runs only when the best top raw
	// similarity stays below this.
	lexicalFallbackCutoff = 0.3

	// vectorOverfetch: stage A fetches this multiple of k so hierarchy
	// filters have candidates to drop.
	vectorOverfetch = 3
)

// Searcher runs the staged query pipeline against the current snapshot.
type Searcher struct {
	snapshots         *Snapshots
	embedder          provider.Embedder
	gate              search.Gate
	translator        *Translator
	bank              SynonymBank
	auditStore        audit.Store
	logger            *log.Logger
	version           string
	enableTranslation bool
	disableUALogging  bool
}

// SearcherOption is a functional option for Searcher.
type SearcherOption func(*Searcher)

// WithGate sets the confidence gate thresholds.
func WithGate(gate search.Gate) SearcherOption {
	return func(s *Searcher) { s.gate = gate }
}

// WithSynonymBank replaces the expansion bank.
func WithSynonymBank(bank SynonymBank) SearcherOption {
	return func(s *Searcher) { s.bank = bank }
}

// WithAuditStore attaches the append-only search log.
func WithAuditStore(store audit.Store) SearcherOption {
	return func(s *Searcher) { s.auditStore = store }
}

// WithTranslation enables the translation rescue stage.
func WithTranslation(enabled bool) SearcherOption {
	return func(s *Searcher) { s.enableTranslation = enabled }
}

// WithVersion sets the service version stamped on log entries.
func WithVersion(version string) SearcherOption {
	return func(s *Searcher) { s.version = version }
}

// WithoutUserAgentLogging keeps user agents out of search log entries.
func WithoutUserAgentLogging() SearcherOption {
	return func(s *Searcher) { s.disableUALogging = true }
}

// NewSearcher creates a Searcher.
func NewSearcher(snapshots *Snapshots, embedder provider.Embedder, translator *Translator, logger *log.Logger, opts ...SearcherOption) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	s := &Searcher{
		snapshots:  snapshots,
		embedder:   embedder,
		gate:       search.NewGate(0, 0),
		translator: translator,
		bank:       translator.bank,
		logger:     logger,
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search executes stages A through D, annotates the final result set once,
// applies the confidence gate, and queues an audit entry off the critical
// path. The snapshot acquired at entry serves the whole request.
func (s *Searcher) Search(ctx context.Context, query search.Query, userAgent string) (search.Response, error) {
	start := time.Now()

	snap, err := s.snapshots.Current()
	if err != nil {
		return search.Response{}, err
	}

	lang := query.Language()
	if lang == "" {
		lang = search.DetectLanguage(query.Text())
	}

	// Stage A: primary vector search.
	results, err := s.vectorStage(ctx, snap, query, query.Text())
	if err != nil {
		return search.Response{}, err
	}

	// Stage B: synonym expansion when the primary pass is unsure.
	if topConfidence(results) < synonymExpansionCutoff {
		results, err = s.expandStage(ctx, snap, query, results)
		if err != nil {
			return search.Response{}, err
		}
	}

	// Stage C: translation rescue for non-English queries.
	translated := false
	if s.gate.LowConfidence(results) && s.enableTranslation && lang != search.LanguageEnglish {
		results, translated, err = s.translateStage(ctx, snap, query, lang, results)
		if err != nil {
			return search.Response{}, err
		}
	}

	// Stage D: lexical fallback when dense similarity cannot discriminate.
	if topScore(results) < lexicalFallbackCutoff || len(results) == 0 {
		results = s.lexicalStage(snap, query, results)
	}

	results = annotate(snap.Catalog(), query.Text(), results)

	response := search.NewResponse(results, s.gate.LowConfidence(results), lang, translated)
	if response.LowConfidence() {
		response = response.WithRescueHints(
			s.translator.Suggestions(query.Text(), lang),
			s.translator.Alternatives(query.Text(), lang),
		)
	}

	s.logSearch(query, response, snap.Model(), userAgent, time.Since(start))

	return response, nil
}

// Lookup returns the full record for a code.
func (s *Searcher) Lookup(code string) (occupation.Record, error) {
	if !occupation.ValidCode(code) {
		return occupation.Record{}, fmt.Errorf("%w: malformed occupation code %q", domain.ErrValidation, code)
	}

	snap, err := s.snapshots.Current()
	if err != nil {
		return occupation.Record{}, err
	}

	record, ok := snap.Catalog().ByCode(code)
	if !ok {
		return occupation.Record{}, fmt.Errorf("%w: occupation %s", domain.ErrNotFound, code)
	}
	return record, nil
}

// vectorStage embeds the text, over-fetches from the vector index, applies
// the hierarchy filters, keeps k, and assigns softmax confidences over the
// retained similarities.
func (s *Searcher) vectorStage(ctx context.Context, snap *search.Snapshot, query search.Query, text string) ([]search.Result, error) {
	vectors, err := s.embedder.Embed(ctx, []string{"query: " + text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches := snap.Vectors().Search(vectors[0], vectorOverfetch*query.K())
	kept := keepFiltered(snap, matches, query)

	// A narrow filter can exhaust the over-fetch window before reaching any
	// matching record; rank the whole index so the filter sees every
	// candidate before the lexical fallback gets a chance to fire.
	if len(kept) == 0 && hasFilters(query) {
		matches = snap.Vectors().Search(vectors[0], snap.Catalog().Len())
		kept = keepFiltered(snap, matches, query)
	}

	scores := make([]float64, len(kept))
	for i, m := range kept {
		scores[i] = m.Similarity()
	}
	confidences := search.Softmax(scores)

	results := make([]search.Result, len(kept))
	for i, m := range kept {
		rec := snap.Catalog().At(m.Ordinal())
		results[i] = search.NewResult(rec.Code(), rec.Title(), rec.Description(), m.Similarity(), confidences[i])
	}
	return results, nil
}

// keepFiltered walks ranked matches, drops records failing the hierarchy
// filters, and keeps at most k.
func keepFiltered(snap *search.Snapshot, matches []index.Match, query search.Query) []index.Match {
	kept := make([]index.Match, 0, query.K())
	for _, m := range matches {
		if !matchesFilters(snap.Catalog().At(m.Ordinal()), query) {
			continue
		}
		kept = append(kept, m)
		if len(kept) == query.K() {
			break
		}
	}
	return kept
}

// expandStage tries every bank variant of the query and keeps the result
// set with the highest top raw similarity, the original included.
func (s *Searcher) expandStage(ctx context.Context, snap *search.Snapshot, query search.Query, best []search.Result) ([]search.Result, error) {
	for _, variant := range s.bank.Variants(query.Text()) {
		candidate, err := s.vectorStage(ctx, snap, query, variant)
		if err != nil {
			return nil, err
		}
		if topScore(candidate) > topScore(best) {
			best = candidate
		}
	}
	return best, nil
}

// translateStage runs the vector stage on the English translation and
// adopts its results when they beat the current best top similarity.
func (s *Searcher) translateStage(ctx context.Context, snap *search.Snapshot, query search.Query, lang search.Language, best []search.Result) ([]search.Result, bool, error) {
	translated, changed := s.translator.Translate(query.Text(), lang)
	if !changed {
		return best, false, nil
	}

	candidate, err := s.vectorStage(ctx, snap, query, translated)
	if err != nil {
		return nil, false, err
	}
	if topScore(candidate) > topScore(best) {
		return candidate, true, nil
	}
	return best, false, nil
}

// lexicalStage merges keyword and fuzzy-title fallback hits into the result
// list without duplicating codes, truncated to k.
func (s *Searcher) lexicalStage(snap *search.Snapshot, query search.Query, results []search.Result) []search.Result {
	present := make(map[string]struct{}, len(results))
	for _, r := range results {
		present[r.Code()] = struct{}{}
	}

	merge := func(candidates []search.Result) {
		for _, c := range candidates {
			if len(results) >= query.K() {
				return
			}
			if _, dup := present[c.Code()]; dup {
				continue
			}
			// Fallback hits honor the hierarchy filters too.
			if rec, ok := snap.Catalog().ByCode(c.Code()); !ok || !matchesFilters(rec, query) {
				continue
			}
			present[c.Code()] = struct{}{}
			results = append(results, c)
		}
	}

	merge(keywordFallback(snap, query.Text()))
	merge(fuzzyFallback(snap, query.Text()))

	if len(results) > query.K() {
		results = results[:query.K()]
	}
	return results
}

// keywordFallback ranks records by how many query tokens hit the inverted
// index, ties broken by code ascending. Score carries the match count;
// confidence is the keyword sentinel.
func keywordFallback(snap *search.Snapshot, text string) []search.Result {
	tokens := index.Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	counts := snap.Inverted().MatchCounts(tokens)
	if len(counts) == 0 {
		return nil
	}

	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if counts[codes[i]] != counts[codes[j]] {
			return counts[codes[i]] > counts[codes[j]]
		}
		return codes[i] < codes[j]
	})

	results := make([]search.Result, 0, len(codes))
	for _, code := range codes {
		rec, ok := snap.Catalog().ByCode(code)
		if !ok {
			continue
		}
		results = append(results, search.NewResult(
			rec.Code(), rec.Title(), rec.Description(),
			float64(counts[code]), search.KeywordFallbackConfidence))
	}
	return results
}

// fuzzyFallback matches the query against every title by edit-distance
// ratio. Score is zero; confidence is the fuzzy sentinel.
func fuzzyFallback(snap *search.Snapshot, text string) []search.Result {
	matches := snap.Titles().Fuzzy(strings.ToLower(text))

	results := make([]search.Result, 0, len(matches))
	for _, m := range matches {
		rec := snap.Catalog().At(m.Ordinal())
		results = append(results, search.NewResult(
			rec.Code(), rec.Title(), rec.Description(),
			0, search.FuzzyFallbackConfidence))
	}
	return results
}

// annotate computes matched_synonyms for the final result set: the title on
// a query-in-title substring hit, then synonyms with a bidirectional
// substring match, then examples when nothing else matched.
func annotate(cat occupation.Catalog, queryText string, results []search.Result) []search.Result {
	queryLC := strings.ToLower(queryText)

	annotated := make([]search.Result, len(results))
	for i, r := range results {
		rec, ok := cat.ByCode(r.Code())
		if !ok {
			annotated[i] = r
			continue
		}

		var matched []string
		if strings.Contains(strings.ToLower(rec.Title()), queryLC) {
			matched = append(matched, rec.Title())
		}
		for _, syn := range rec.Synonyms() {
			if len(matched) >= search.MaxMatchedSynonyms {
				break
			}
			synLC := strings.ToLower(syn)
			if strings.Contains(queryLC, synLC) || strings.Contains(synLC, queryLC) {
				matched = append(matched, syn)
			}
		}
		if len(matched) == 0 {
			for _, ex := range rec.Examples() {
				if len(matched) >= search.MaxMatchedSynonyms {
					break
				}
				exLC := strings.ToLower(ex)
				if strings.Contains(queryLC, exLC) || strings.Contains(exLC, queryLC) {
					matched = append(matched, ex)
				}
			}
		}

		annotated[i] = r.WithMatchedSynonyms(matched)
	}
	return annotated
}

func hasFilters(query search.Query) bool {
	return query.DivisionCode() != "" || query.MinorGroupCode() != ""
}

// matchesFilters applies the optional hierarchy filters. Codes carry the
// hierarchy positionally, so records missing an explicit hierarchy block
// are filtered by code prefix.
func matchesFilters(rec occupation.Record, query search.Query) bool {
	if d := query.DivisionCode(); d != "" {
		if divisionOf(rec) != d {
			return false
		}
	}
	if m := query.MinorGroupCode(); m != "" {
		if minorGroupOf(rec) != m {
			return false
		}
	}
	return true
}

func divisionOf(rec occupation.Record) string {
	if h := rec.Hierarchy(); !h.IsZero() {
		return h.DivisionCode()
	}
	return rec.Code()[:1]
}

func minorGroupOf(rec occupation.Record) string {
	if h := rec.Hierarchy(); !h.IsZero() {
		return h.MinorGroupCode()
	}
	return rec.Code()[:3]
}

func topScore(results []search.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score()
}

func topConfidence(results []search.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Confidence()
}

// logSearch queues the audit entry; the store keeps it off the critical
// path and never fails the request.
func (s *Searcher) logSearch(query search.Query, response search.Response, model, userAgent string, latency time.Duration) {
	if s.auditStore == nil {
		return
	}

	entry := audit.NewSearchEntry(query, response, model, s.version, latency)
	if !s.disableUALogging {
		entry.UserAgent = userAgent
	}
	s.auditStore.AppendSearch(entry)
}
