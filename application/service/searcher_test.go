package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/domain/index"
	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/domain/search"
	"github.com/shramsetu/ncosearch/infrastructure/provider"
	"github.com/shramsetu/ncosearch/internal/domain"
)

func testRecords() []occupation.Record {
	return []occupation.Record{
		occupation.NewRecord("7212.0100", "Welder", "Joins metal parts using electric arc welding equipment",
			[]string{"welding machine operator", "arc welder", "gas welder"},
			[]string{"welding workshop"}),
		occupation.NewRecord("7531.0100", "Tailor", "Makes garments to measure",
			[]string{"darzi", "garment maker"}, nil),
		occupation.NewRecord("2330.0100", "Teacher, Secondary School", "Teaches one or more subjects in secondary school",
			[]string{"school teacher"}, nil),
		occupation.NewRecord("8322.0100", "Driver, Car", "Drives cars to transport passengers",
			[]string{"chauffeur", "cab driver"}, nil),
		occupation.NewRecord("5120.0100", "Cook", "Prepares and cooks food in a kitchen",
			[]string{"chef"}, nil),
		occupation.NewRecord("7411.0100", "Electrician", "Installs and repairs electrical wiring",
			[]string{"electric fitter"}, nil),
	}
}

// buildTestSnapshot embeds the catalog with the deterministic hash embedder
// and assembles every derived index, the same way a reindex would.
func buildTestSnapshot(t *testing.T, embedder provider.Embedder, records []occupation.Record) *search.Snapshot {
	t.Helper()

	cat := occupation.NewCatalog(records)
	passages := make([]string, cat.Len())
	for i, rec := range cat.Records() {
		passages[i] = "passage: " + rec.PassageText()
	}

	vectors, err := embedder.Embed(context.Background(), passages)
	require.NoError(t, err)

	flat := index.NewFlat()
	require.NoError(t, flat.BuildFrom(vectors))

	return search.NewSnapshot(cat, flat, index.BuildInverted(cat), index.BuildTitles(cat),
		embedder.Model(), time.Now().UTC())
}

func newTestSearcher(t *testing.T, opts ...SearcherOption) *Searcher {
	t.Helper()

	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	snapshots := NewSnapshots()
	snapshots.Publish(buildTestSnapshot(t, embedder, testRecords()))

	return NewSearcher(snapshots, embedder, newTestTranslator(t), nil, opts...)
}

// memAuditStore captures appends for assertions.
type memAuditStore struct {
	mu       sync.Mutex
	searches []audit.SearchEntry
	feedback []audit.FeedbackEntry
}

func (m *memAuditStore) AppendSearch(entry audit.SearchEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches = append(m.searches, entry)
}

func (m *memAuditStore) AppendFeedback(entry audit.FeedbackEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, entry)
}

func (m *memAuditStore) ReadReverse(context.Context, audit.Stream, int) ([]map[string]any, error) {
	return []map[string]any{}, nil
}

func (m *memAuditStore) DeleteSince(context.Context, time.Time) error { return nil }
func (m *memAuditStore) Purge(context.Context) error                  { return nil }
func (m *memAuditStore) Close() error                                 { return nil }

func mustQuery(t *testing.T, text string, k int, opts ...search.QueryOption) search.Query {
	t.Helper()
	q, err := search.NewQuery(text, k, opts...)
	require.NoError(t, err)
	return q
}

func TestSearcher_Search_VectorMatch(t *testing.T) {
	searcher := newTestSearcher(t)

	resp, err := searcher.Search(context.Background(), mustQuery(t, "welding machine operator", 5), "")
	require.NoError(t, err)

	results := resp.Results()
	require.NotEmpty(t, results)
	assert.Equal(t, "7212.0100", results[0].Code())
	assert.Equal(t, search.LanguageEnglish, resp.Language())
	assert.False(t, resp.Translated())
}

func TestSearcher_Search_AnnotatesTitleMatch(t *testing.T) {
	searcher := newTestSearcher(t)

	resp, err := searcher.Search(context.Background(), mustQuery(t, "welder", 5), "")
	require.NoError(t, err)

	results := resp.Results()
	require.NotEmpty(t, results)
	assert.Equal(t, "7212.0100", results[0].Code())
	assert.Contains(t, results[0].MatchedSynonyms(), "Welder")
	assert.LessOrEqual(t, len(results[0].MatchedSynonyms()), search.MaxMatchedSynonyms)
}

func TestSearcher_Search_TranslationRescue(t *testing.T) {
	searcher := newTestSearcher(t, WithTranslation(true), WithGate(search.NewGate(0.48, 0.55)))

	resp, err := searcher.Search(context.Background(), mustQuery(t, "वेल्डिंग", 5), "")
	require.NoError(t, err)

	assert.Equal(t, search.LanguageHindi, resp.Language())
	assert.True(t, resp.Translated())

	results := resp.Results()
	require.NotEmpty(t, results)
	assert.Equal(t, "7212.0100", results[0].Code())
}

func TestSearcher_Search_LowConfidenceHints(t *testing.T) {
	searcher := newTestSearcher(t, WithGate(search.NewGate(0.48, 0.55)))

	resp, err := searcher.Search(context.Background(), mustQuery(t, "quantum physics research", 5), "")
	require.NoError(t, err)

	assert.True(t, resp.LowConfidence())
	suggestions := resp.Suggestions()
	assert.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 3)
}

func TestSearcher_Search_MisspellingAlternatives(t *testing.T) {
	searcher := newTestSearcher(t, WithGate(search.NewGate(0.48, 0.55)))

	resp, err := searcher.Search(context.Background(), mustQuery(t, "enginer", 5), "")
	require.NoError(t, err)

	require.True(t, resp.LowConfidence())
	assert.Contains(t, resp.Alternatives(), "engineer")
}

func TestSearcher_Search_ResultBounds(t *testing.T) {
	searcher := newTestSearcher(t)

	resp, err := searcher.Search(context.Background(), mustQuery(t, "cook", 3), "")
	require.NoError(t, err)

	results := resp.Results()
	assert.LessOrEqual(t, len(results), 3)

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		_, dup := seen[r.Code()]
		assert.False(t, dup, "duplicate code %s", r.Code())
		seen[r.Code()] = struct{}{}

		assert.GreaterOrEqual(t, r.Confidence(), 0.0)
		assert.LessOrEqual(t, r.Confidence(), 1.0)
	}
}

func TestSearcher_Search_HierarchyFilters(t *testing.T) {
	searcher := newTestSearcher(t)

	t.Run("division", func(t *testing.T) {
		resp, err := searcher.Search(context.Background(),
			mustQuery(t, "welding", 5, search.WithDivisionFilter("7")), "")
		require.NoError(t, err)

		for _, r := range resp.Results() {
			assert.Equal(t, "7", r.Code()[:1])
		}
	})

	t.Run("minor group", func(t *testing.T) {
		resp, err := searcher.Search(context.Background(),
			mustQuery(t, "clothing work", 5, search.WithMinorGroupFilter("753")), "")
		require.NoError(t, err)

		results := resp.Results()
		require.Len(t, results, 1)
		assert.Equal(t, "7531.0100", results[0].Code())
	})
}

func TestSearcher_Search_FilterBeyondOverfetchWindow(t *testing.T) {
	// Enough same-division records that the over-fetch window never reaches
	// a filtered-division match, and the keyword fallback has off-division
	// hits to offer.
	records := make([]occupation.Record, 0, 55)
	for i := 0; i < 50; i++ {
		records = append(records, occupation.NewRecord(
			fmt.Sprintf("72%02d.0100", i),
			fmt.Sprintf("Welder Type %d", i),
			"Joins metal parts by welding",
			[]string{"welding"}, nil))
	}
	for i := 0; i < 5; i++ {
		records = append(records, occupation.NewRecord(
			fmt.Sprintf("93%02d.0100", i),
			fmt.Sprintf("Loader Type %d", i),
			"Loads and unloads goods by hand",
			nil, nil))
	}

	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	snapshots := NewSnapshots()
	snapshots.Publish(buildTestSnapshot(t, embedder, records))
	searcher := NewSearcher(snapshots, embedder, newTestTranslator(t), nil)

	resp, err := searcher.Search(context.Background(),
		mustQuery(t, "welding", 2, search.WithDivisionFilter("9")), "")
	require.NoError(t, err)

	results := resp.Results()
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 2)
	for _, r := range results {
		assert.Equal(t, "9", r.Code()[:1])
	}
}

func TestSearcher_Search_NoSnapshot(t *testing.T) {
	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	searcher := NewSearcher(NewSnapshots(), embedder, newTestTranslator(t), nil)

	_, err := searcher.Search(context.Background(), mustQuery(t, "welder", 5), "")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestSearcher_Search_AuditEntry(t *testing.T) {
	store := &memAuditStore{}
	searcher := newTestSearcher(t, WithAuditStore(store), WithVersion("1.2.3"))

	_, err := searcher.Search(context.Background(), mustQuery(t, "welder", 5), "test-agent")
	require.NoError(t, err)

	require.Len(t, store.searches, 1)
	entry := store.searches[0]
	assert.Equal(t, "welder", entry.Query)
	assert.Equal(t, 5, entry.K)
	assert.Equal(t, "test-hash", entry.Model)
	assert.Equal(t, "1.2.3", entry.Version)
	assert.Equal(t, "test-agent", entry.UserAgent)
	assert.Equal(t, "7212.0100", entry.Top.Code)
	assert.Equal(t, []string{"7212.0100"}, entry.TopK[:1])
}

func TestSearcher_Search_UserAgentLoggingDisabled(t *testing.T) {
	store := &memAuditStore{}
	searcher := newTestSearcher(t, WithAuditStore(store), WithoutUserAgentLogging())

	_, err := searcher.Search(context.Background(), mustQuery(t, "welder", 5), "test-agent")
	require.NoError(t, err)

	require.Len(t, store.searches, 1)
	assert.Empty(t, store.searches[0].UserAgent)
}

func TestSearcher_Lookup(t *testing.T) {
	searcher := newTestSearcher(t)

	t.Run("found", func(t *testing.T) {
		rec, err := searcher.Lookup("7531.0100")
		require.NoError(t, err)
		assert.Equal(t, "Tailor", rec.Title())
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := searcher.Lookup("not-a-code")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := searcher.Lookup("9999.9999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestKeywordFallback(t *testing.T) {
	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	snap := buildTestSnapshot(t, embedder, testRecords())

	results := keywordFallback(snap, "chauffeur")
	require.NotEmpty(t, results)
	assert.Equal(t, "8322.0100", results[0].Code())
	assert.Equal(t, search.KeywordFallbackConfidence, results[0].Confidence())
	assert.GreaterOrEqual(t, results[0].Score(), 1.0)
}

func TestFuzzyFallback(t *testing.T) {
	embedder := provider.NewHashEmbedder("test-hash", provider.DefaultHashDimensions)
	snap := buildTestSnapshot(t, embedder, testRecords())

	results := fuzzyFallback(snap, "welderr")
	require.NotEmpty(t, results)
	assert.Equal(t, "7212.0100", results[0].Code())
	assert.Equal(t, search.FuzzyFallbackConfidence, results[0].Confidence())
	assert.Equal(t, 0.0, results[0].Score())
}

func TestLexicalStage_NoDuplicateCodes(t *testing.T) {
	searcher := newTestSearcher(t)
	snap, err := searcher.snapshots.Current()
	require.NoError(t, err)

	existing := []search.Result{
		search.NewResult("8322.0100", "Driver, Car", "", 0.1, 0.2),
	}
	merged := searcher.lexicalStage(snap, mustQuery(t, "chauffeur", 5), existing)

	seen := make(map[string]int, len(merged))
	for _, r := range merged {
		seen[r.Code()]++
	}
	assert.Equal(t, 1, seen["8322.0100"])
	assert.LessOrEqual(t, len(merged), 5)
}
