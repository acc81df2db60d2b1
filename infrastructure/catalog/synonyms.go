package catalog

import (
	"fmt"

	"github.com/shramsetu/ncosearch/domain/occupation"
)

// SynonymUpdate adds and removes synonyms on one occupation record,
// identified by NCO code.
type SynonymUpdate struct {
	code   string
	add    []string
	remove []string
}

// NewSynonymUpdate creates a SynonymUpdate.
func NewSynonymUpdate(code string, add, remove []string) SynonymUpdate {
	return SynonymUpdate{code: code, add: add, remove: remove}
}

// Code returns the target NCO code.
func (u SynonymUpdate) Code() string { return u.code }

// SynonymUpdateResult reports the outcome of a batch of synonym updates.
type SynonymUpdateResult struct {
	updated      int
	invalidCodes []string
}

// Updated returns how many record edits were applied.
func (r SynonymUpdateResult) Updated() int { return r.updated }

// InvalidCodes returns the codes that matched no record, in request order.
func (r SynonymUpdateResult) InvalidCodes() []string {
	codes := make([]string, len(r.invalidCodes))
	copy(codes, r.invalidCodes)
	return codes
}

// RequiresReindex reports whether the edits changed the catalog file, which
// means vectors are stale until the next reindex.
func (r SynonymUpdateResult) RequiresReindex() bool { return r.updated > 0 }

// ApplySynonymUpdates loads the catalog, applies the updates with set
// semantics (add skips existing values, remove discards missing ones without
// error), and saves the result when anything changed. Unknown codes are
// collected, not fatal.
func (s *FileStore) ApplySynonymUpdates(updates []SynonymUpdate) (SynonymUpdateResult, error) {
	cat, err := s.Load()
	if err != nil {
		return SynonymUpdateResult{}, err
	}

	records := cat.Records()
	byCode := make(map[string]int, len(records))
	for i, r := range records {
		byCode[r.Code()] = i
	}

	result := SynonymUpdateResult{invalidCodes: []string{}}

	for _, update := range updates {
		idx, ok := byCode[update.code]
		if !ok {
			result.invalidCodes = append(result.invalidCodes, update.code)
			continue
		}

		r := records[idx]

		if len(update.add) > 0 {
			records[idx] = r.WithSynonyms(append(r.Synonyms(), update.add...))
			r = records[idx]
			result.updated++
		}

		if len(update.remove) > 0 {
			drop := make(map[string]struct{}, len(update.remove))
			for _, syn := range update.remove {
				drop[syn] = struct{}{}
			}
			kept := make([]string, 0, len(r.Synonyms()))
			for _, syn := range r.Synonyms() {
				if _, gone := drop[syn]; !gone {
					kept = append(kept, syn)
				}
			}
			records[idx] = r.WithSynonyms(kept)
			result.updated++
		}
	}

	if result.updated > 0 {
		if err := s.Save(occupation.NewCatalog(records)); err != nil {
			return SynonymUpdateResult{}, fmt.Errorf("save synonym updates: %w", err)
		}
	}

	return result, nil
}
