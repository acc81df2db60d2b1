package occupation

import "strings"

// Catalog is an immutable, ordered collection of occupation records with
// code and lowercased-title lookups derived at construction.
type Catalog struct {
	records   []Record
	byCode    map[string]int
	byTitleLC map[string]int
	skipped   int
}

// NewCatalog builds a Catalog from raw records. Records with malformed codes
// or empty titles are skipped, and duplicate codes collapse first-wins; the
// skip count is retained for load-time warnings. Title collisions also keep
// the first record.
func NewCatalog(records []Record) Catalog {
	kept := make([]Record, 0, len(records))
	byCode := make(map[string]int, len(records))
	byTitleLC := make(map[string]int, len(records))
	skipped := 0

	for _, r := range records {
		if !ValidCode(r.Code()) || r.Title() == "" {
			skipped++
			continue
		}
		if _, exists := byCode[r.Code()]; exists {
			skipped++
			continue
		}

		idx := len(kept)
		kept = append(kept, r)
		byCode[r.Code()] = idx

		titleLC := strings.ToLower(r.Title())
		if _, exists := byTitleLC[titleLC]; !exists {
			byTitleLC[titleLC] = idx
		}
	}

	return Catalog{
		records:   kept,
		byCode:    byCode,
		byTitleLC: byTitleLC,
		skipped:   skipped,
	}
}

// Len returns the number of records in catalog order.
func (c Catalog) Len() int { return len(c.records) }

// Skipped returns how many input records were dropped during construction.
func (c Catalog) Skipped() int { return c.skipped }

// At returns the record at the given ordinal position.
func (c Catalog) At(ordinal int) Record { return c.records[ordinal] }

// ByCode looks up a record by its NCO code.
func (c Catalog) ByCode(code string) (Record, bool) {
	idx, ok := c.byCode[code]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// ByTitle looks up a record by its lowercased title.
func (c Catalog) ByTitle(titleLC string) (Record, bool) {
	idx, ok := c.byTitleLC[titleLC]
	if !ok {
		return Record{}, false
	}
	return c.records[idx], true
}

// Records returns the records in catalog order.
func (c Catalog) Records() []Record {
	result := make([]Record, len(c.records))
	copy(result, c.records)
	return result
}

// Titles returns every lowercased title with its ordinal position.
func (c Catalog) Titles() map[string]int {
	result := make(map[string]int, len(c.byTitleLC))
	for title, idx := range c.byTitleLC {
		result[title] = idx
	}
	return result
}
