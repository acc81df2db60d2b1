// Package service provides application layer services that orchestrate the
// search pipeline, reindexing, and audit operations.
package service

import (
	"fmt"
	"sync/atomic"

	"github.com/shramsetu/ncosearch/domain/search"
	"github.com/shramsetu/ncosearch/internal/domain"
)

// Snapshots holds the single current snapshot reference. Readers acquire it
// once per request; publish is one pointer swap, so no reader ever observes
// a torn state. Old snapshots are garbage collected when the last in-flight
// reader drops them.
type Snapshots struct {
	current atomic.Pointer[search.Snapshot]
}

// NewSnapshots creates an empty snapshot manager.
func NewSnapshots() *Snapshots {
	return &Snapshots{}
}

// Current returns the current snapshot, or ErrUnavailable before the first
// publish (the process is still starting).
func (s *Snapshots) Current() (*search.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no snapshot loaded", domain.ErrUnavailable)
	}
	return snap, nil
}

// Loaded reports whether a snapshot has been published.
func (s *Snapshots) Loaded() bool {
	return s.current.Load() != nil
}

// VectorsLoaded returns the current snapshot's vector count, zero before
// the first publish.
func (s *Snapshots) VectorsLoaded() int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return snap.Vectors().Len()
}

// Publish atomically replaces the current snapshot.
func (s *Snapshots) Publish(snap *search.Snapshot) {
	s.current.Store(snap)
}
