package index

import (
	"math"
	"testing"
)

func TestFlat_Search_OrdersBySimilarity(t *testing.T) {
	f := NewFlat()
	err := f.BuildFrom([][]float32{
		{0, 1, 0},
		{1, 0, 0},
		{0.7071, 0.7071, 0},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	matches := f.Search([]float32{1, 0, 0}, 3)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	if matches[0].Ordinal() != 1 {
		t.Errorf("expected ordinal 1 first, got %d", matches[0].Ordinal())
	}
	if matches[1].Ordinal() != 2 {
		t.Errorf("expected ordinal 2 second, got %d", matches[1].Ordinal())
	}
	if math.Abs(matches[0].Similarity()-1.0) > 1e-6 {
		t.Errorf("expected similarity 1.0, got %f", matches[0].Similarity())
	}
}

func TestFlat_Search_TiesBreakByOrdinal(t *testing.T) {
	f := NewFlat()
	err := f.BuildFrom([][]float32{
		{1, 0},
		{1, 0},
		{0, 1},
		{1, 0},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	matches := f.Search([]float32{1, 0}, 4)
	wantOrder := []int{0, 1, 3, 2}
	for i, want := range wantOrder {
		if matches[i].Ordinal() != want {
			t.Errorf("position %d: expected ordinal %d, got %d", i, want, matches[i].Ordinal())
		}
	}
}

func TestFlat_Search_KLargerThanN(t *testing.T) {
	f := NewFlat()
	if err := f.BuildFrom([][]float32{{1, 0}, {0, 1}}); err != nil {
		t.Fatalf("build: %v", err)
	}

	matches := f.Search([]float32{1, 0}, 10)
	if len(matches) != 2 {
		t.Errorf("expected min(k, N) = 2 matches, got %d", len(matches))
	}
}

func TestFlat_BuildFrom_RejectsNonFinite(t *testing.T) {
	cases := [][]float32{
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 0},
		{float32(math.Inf(-1)), 0},
	}

	for _, bad := range cases {
		f := NewFlat()
		if err := f.BuildFrom([][]float32{{1, 0}, bad}); err == nil {
			t.Errorf("expected error for vector %v", bad)
		}
	}
}

func TestFlat_BuildFrom_RejectsRaggedMatrix(t *testing.T) {
	f := NewFlat()
	if err := f.BuildFrom([][]float32{{1, 0}, {1, 0, 0}}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}

func TestFlat_BuildFrom_ReplacesContents(t *testing.T) {
	f := NewFlat()
	if err := f.BuildFrom([][]float32{{1, 0}, {0, 1}}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := f.BuildFrom([][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if f.Len() != 1 || f.Dimensions() != 3 {
		t.Errorf("expected 1 vector of dim 3, got %d of dim %d", f.Len(), f.Dimensions())
	}
}
