package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shramsetu/ncosearch/domain/search"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	translator, err := NewTranslator()
	require.NoError(t, err)
	return translator
}

func TestTranslator_Translate(t *testing.T) {
	translator := newTestTranslator(t)

	t.Run("direct term", func(t *testing.T) {
		translated, changed := translator.Translate("दर्जी", search.LanguageHindi)
		assert.True(t, changed)
		assert.Equal(t, "tailor", translated)
	})

	t.Run("word by word", func(t *testing.T) {
		translated, changed := translator.Translate("दर्जी xyz", search.LanguageHindi)
		assert.True(t, changed)
		assert.Equal(t, "tailor xyz", translated)
	})

	t.Run("english is a no-op", func(t *testing.T) {
		translated, changed := translator.Translate("welder", search.LanguageEnglish)
		assert.False(t, changed)
		assert.Equal(t, "welder", translated)
	})

	t.Run("unknown terms pass through", func(t *testing.T) {
		_, changed := translator.Translate("अनजान", search.LanguageHindi)
		assert.False(t, changed)
	})
}

func TestTranslator_SpellCorrect(t *testing.T) {
	translator := newTestTranslator(t)

	corrected, ok := translator.SpellCorrect("enginer")
	require.True(t, ok)
	assert.Equal(t, "engineer", corrected)

	corrected, ok = translator.SpellCorrect("Civil Enginer jobs")
	require.True(t, ok)
	assert.Equal(t, "civil engineer jobs", corrected)

	_, ok = translator.SpellCorrect("welder")
	assert.False(t, ok)
}

func TestTranslator_Alternatives(t *testing.T) {
	translator := newTestTranslator(t)

	t.Run("includes spell correction", func(t *testing.T) {
		alternatives := translator.Alternatives("enginer", search.LanguageEnglish)
		assert.Contains(t, alternatives, "engineer")
	})

	t.Run("capped and deduplicated", func(t *testing.T) {
		alternatives := translator.Alternatives("welder", search.LanguageEnglish)
		assert.LessOrEqual(t, len(alternatives), maxAlternatives)
		assert.NotContains(t, alternatives, "welder")

		seen := make(map[string]struct{}, len(alternatives))
		for _, alt := range alternatives {
			_, dup := seen[alt]
			assert.False(t, dup, "duplicate alternative %q", alt)
			seen[alt] = struct{}{}
		}
	})

	t.Run("suffix stripping", func(t *testing.T) {
		alternatives := translator.Alternatives("plasterer", search.LanguageEnglish)
		assert.Contains(t, alternatives, "plaster")
	})

	t.Run("translation variations for hindi", func(t *testing.T) {
		alternatives := translator.Alternatives("दर्जी", search.LanguageHindi)
		assert.Contains(t, alternatives, "tailor")
	})
}

func TestTranslator_Suggestions(t *testing.T) {
	translator := newTestTranslator(t)

	t.Run("per language", func(t *testing.T) {
		hindi := translator.Suggestions("कुछ काम की तलाश", search.LanguageHindi)
		english := translator.Suggestions("some kind of work", search.LanguageEnglish)
		require.NotEmpty(t, hindi)
		require.NotEmpty(t, english)
		assert.NotEqual(t, hindi[0], english[0])
	})

	t.Run("single word gets qualifier hint", func(t *testing.T) {
		got := translator.Suggestions("welder", search.LanguageEnglish)
		assert.LessOrEqual(t, len(got), maxSuggestions)
	})
}

func TestSynonymBank_Variants(t *testing.T) {
	bank := NewSynonymBank(map[string][]string{
		"tailor": {"darzi", "garment maker"},
		"driver": {"chauffeur"},
	})

	t.Run("substitutes every synonym", func(t *testing.T) {
		variants := bank.Variants("Ladies Tailor")
		assert.Equal(t, []string{"ladies darzi", "ladies garment maker"}, variants)
	})

	t.Run("no head term means no variants", func(t *testing.T) {
		assert.Empty(t, bank.Variants("welder"))
	})

	t.Run("terms are ordered", func(t *testing.T) {
		assert.Equal(t, []string{"driver", "tailor"}, bank.Terms())
	})
}
