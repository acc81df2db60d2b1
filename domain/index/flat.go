// Package index provides the in-memory indexes a snapshot is built from:
// a flat dense-vector index, a keyword inverted index, and a title index.
package index

import (
	"fmt"
	"math"
	"sort"
)

// Match is one vector search hit: the catalog ordinal and its inner-product
// similarity to the query.
type Match struct {
	ordinal    int
	similarity float64
}

// NewMatch creates a new Match.
func NewMatch(ordinal int, similarity float64) Match {
	return Match{ordinal: ordinal, similarity: similarity}
}

// Ordinal returns the catalog position of the matched record.
func (m Match) Ordinal() int { return m.ordinal }

// Similarity returns the inner product with the query vector.
func (m Match) Similarity() float64 { return m.similarity }

// Flat is an exact inner-product index over unit-norm vectors. At catalog
// scale (a few thousand entries) a full scan beats any approximate
// structure, and exactness keeps reindexes byte-reproducible.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty Flat index.
func NewFlat() *Flat {
	return &Flat{}
}

// BuildFrom replaces the index contents with the given N×D matrix. It fails
// if rows disagree on dimension or any component is not finite.
func (f *Flat) BuildFrom(vectors [][]float32) error {
	if len(vectors) == 0 {
		f.dim = 0
		f.vectors = nil
		return nil
	}

	dim := len(vectors[0])
	copied := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
		row := make([]float32, dim)
		for j, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return fmt.Errorf("vector %d component %d is not finite", i, j)
			}
			row[j] = x
		}
		copied[i] = row
	}

	f.dim = dim
	f.vectors = copied
	return nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dimensions returns the vector dimension, zero when empty.
func (f *Flat) Dimensions() int { return f.dim }

// Vectors returns the raw matrix in ordinal order. Rows are shared, not
// copied; callers must treat them as read-only.
func (f *Flat) Vectors() [][]float32 { return f.vectors }

// Search returns the top k matches for a unit-norm query vector, sorted by
// similarity descending with ties broken by ordinal ascending. The result
// length is min(k, N).
func (f *Flat) Search(query []float32, k int) []Match {
	if k <= 0 || len(f.vectors) == 0 || len(query) != f.dim {
		return []Match{}
	}

	matches := make([]Match, len(f.vectors))
	for i, v := range f.vectors {
		var dot float64
		for j := range v {
			dot += float64(query[j]) * float64(v[j])
		}
		matches[i] = NewMatch(i, dot)
	}

	// Stable sort preserves ordinal order among equal similarities.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}
