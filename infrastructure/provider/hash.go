package provider

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultHashDimensions matches the dimensionality of the default remote
// model so persisted snapshots stay interchangeable between providers.
const DefaultHashDimensions = 384

// Feature weights for the hash vector. Tokens carry most of the signal;
// character trigrams keep close spellings close.
const (
	hashTokenWeight   = 0.7
	hashTrigramWeight = 0.3
	hashTrigramSize   = 3
)

// HashEmbedder generates deterministic embeddings from token and character
// trigram hashes. No network, no model download. Semantic quality is far
// below a real model; it exists for development and tests.
type HashEmbedder struct {
	model      string
	dimensions int
}

// NewHashEmbedder creates a hash embedder reporting the given model name.
func NewHashEmbedder(model string, dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashEmbedder{model: model, dimensions: dimensions}
}

// Model returns the model identifier.
func (e *HashEmbedder) Model() string { return e.model }

// Dimensions returns the vector dimensionality.
func (e *HashEmbedder) Dimensions() int { return e.dimensions }

// Embed generates one unit-normalized vector per text. The same text always
// produces the same vector.
func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = normalize(e.vector(text))
	}
	return vectors, nil
}

func (e *HashEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dimensions)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return vec
	}

	for _, token := range hashTokenize(trimmed) {
		vec[hashToIndex(token, e.dimensions)] += hashTokenWeight
	}

	runes := hashNormalizeRunes(trimmed)
	for i := 0; i+hashTrigramSize <= len(runes); i++ {
		trigram := string(runes[i : i+hashTrigramSize])
		vec[hashToIndex(trigram, e.dimensions)] += hashTrigramWeight
	}

	return vec
}

// hashTokenize lowercases and splits on anything that is not a letter or
// digit. Works across scripts, not just ASCII.
func hashTokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hashNormalizeRunes keeps lowercased letters and digits as a rune slice so
// trigrams stay aligned on rune boundaries in multi-byte scripts.
func hashNormalizeRunes(text string) []rune {
	runes := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			runes = append(runes, r)
		}
	}
	return runes
}

// hashToIndex maps a string to a vector index via FNV-64.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

var _ Embedder = (*HashEmbedder)(nil)
