package index

import (
	"reflect"
	"testing"

	"github.com/shramsetu/ncosearch/domain/occupation"
)

func testCatalog() occupation.Catalog {
	return occupation.NewCatalog([]occupation.Record{
		occupation.NewRecord("7212.0100", "Welder, Gas", "", []string{"gas welder", "brazier"}, nil),
		occupation.NewRecord("7212.0200", "Welder, Electric", "", []string{"arc welder"}, nil),
		occupation.NewRecord("3411.0200", "Tailor", "", []string{"seamstress"}, nil),
	})
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Welder, Gas & arc-welding; it")
	want := []string{"welder", "gas", "arc", "welding"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize: got %v, want %v", got, want)
	}
}

func TestTokenize_NoLongTokens(t *testing.T) {
	if got := Tokenize("a of 12 34"); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestBuildInverted(t *testing.T) {
	inv := BuildInverted(testCatalog())

	welder := inv.Codes("welder")
	want := []string{"7212.0100", "7212.0200"}
	if !reflect.DeepEqual(welder, want) {
		t.Errorf("welder postings: got %v, want %v", welder, want)
	}

	// Synonyms are indexed too.
	if got := inv.Codes("seamstress"); !reflect.DeepEqual(got, []string{"3411.0200"}) {
		t.Errorf("seamstress postings: got %v", got)
	}

	// A word appearing in both title and synonym of one record counts once.
	if got := inv.Codes("gas"); !reflect.DeepEqual(got, []string{"7212.0100"}) {
		t.Errorf("gas postings: got %v", got)
	}
}

func TestInverted_MatchCounts(t *testing.T) {
	inv := BuildInverted(testCatalog())

	counts := inv.MatchCounts([]string{"arc", "welder"})
	if counts["7212.0200"] != 2 {
		t.Errorf("expected 2 matches for 7212.0200, got %d", counts["7212.0200"])
	}
	if counts["7212.0100"] != 1 {
		t.Errorf("expected 1 match for 7212.0100, got %d", counts["7212.0100"])
	}
	if _, ok := counts["3411.0200"]; ok {
		t.Error("expected no matches for 3411.0200")
	}
}
