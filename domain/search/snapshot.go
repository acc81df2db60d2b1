package search

import (
	"time"

	"github.com/shramsetu/ncosearch/domain/index"
	"github.com/shramsetu/ncosearch/domain/occupation"
)

// Snapshot is the immutable tuple served by readers between reindexes:
// the catalog plus every index derived from it. A request acquires one
// snapshot reference at entry and uses it throughout; publish is a single
// pointer swap in the snapshot manager.
type Snapshot struct {
	catalog  occupation.Catalog
	vectors  *index.Flat
	inverted index.Inverted
	titles   index.Titles
	model    string
	builtAt  time.Time
}

// NewSnapshot creates a new Snapshot.
func NewSnapshot(catalog occupation.Catalog, vectors *index.Flat, inverted index.Inverted, titles index.Titles, model string, builtAt time.Time) *Snapshot {
	return &Snapshot{
		catalog:  catalog,
		vectors:  vectors,
		inverted: inverted,
		titles:   titles,
		model:    model,
		builtAt:  builtAt,
	}
}

// Catalog returns the frozen catalog.
func (s *Snapshot) Catalog() occupation.Catalog { return s.catalog }

// Vectors returns the dense vector index; its size equals the catalog size.
func (s *Snapshot) Vectors() *index.Flat { return s.vectors }

// Inverted returns the keyword inverted index.
func (s *Snapshot) Inverted() index.Inverted { return s.inverted }

// Titles returns the title index used by the fuzzy fallback.
func (s *Snapshot) Titles() index.Titles { return s.titles }

// Model returns the embedding model id the vectors were built with.
func (s *Snapshot) Model() string { return s.model }

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }
