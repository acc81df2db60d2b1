// Package catalog persists the occupation catalog as a JSON file.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/internal/log"
)

// recordDTO mirrors one occupation entry in the catalog file. Both the
// current `nco_code` and the legacy `code` field names are accepted on load.
type recordDTO struct {
	NCOCode        string        `json:"nco_code,omitempty"`
	LegacyCode     string        `json:"code,omitempty"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Synonyms       []string      `json:"synonyms,omitempty"`
	Examples       []string      `json:"examples,omitempty"`
	Hierarchy      *hierarchyDTO `json:"hierarchy,omitempty"`
	SearchKeywords []string      `json:"search_keywords,omitempty"`
	SearchableText string        `json:"search_text,omitempty"`
}

type hierarchyDTO struct {
	DivisionCode    string `json:"division_code,omitempty"`
	SubDivisionCode string `json:"sub_division_code,omitempty"`
	MinorGroupCode  string `json:"minor_group_code,omitempty"`
	UnitGroupCode   string `json:"unit_group_code,omitempty"`
	DivisionName    string `json:"division_name,omitempty"`
}

func (d recordDTO) code() string {
	if d.NCOCode != "" {
		return d.NCOCode
	}
	return d.LegacyCode
}

func (d recordDTO) toRecord() occupation.Record {
	r := occupation.NewRecord(d.code(), d.Title, d.Description, d.Synonyms, d.Examples)
	if d.Hierarchy != nil {
		r = r.WithHierarchy(occupation.NewHierarchy(
			d.Hierarchy.DivisionCode,
			d.Hierarchy.SubDivisionCode,
			d.Hierarchy.MinorGroupCode,
			d.Hierarchy.UnitGroupCode,
			d.Hierarchy.DivisionName,
		))
	}
	if len(d.SearchKeywords) > 0 {
		r = r.WithSearchKeywords(d.SearchKeywords)
	}
	if d.SearchableText != "" {
		r = r.WithSearchableText(d.SearchableText)
	}
	return r
}

func toDTO(r occupation.Record) recordDTO {
	dto := recordDTO{
		NCOCode:        r.Code(),
		Title:          r.Title(),
		Description:    r.Description(),
		Synonyms:       r.Synonyms(),
		Examples:       r.Examples(),
		SearchKeywords: r.SearchKeywords(),
		SearchableText: r.SearchableText(),
	}
	if h := r.Hierarchy(); !h.IsZero() {
		dto.Hierarchy = &hierarchyDTO{
			DivisionCode:    h.DivisionCode(),
			SubDivisionCode: h.SubDivisionCode(),
			MinorGroupCode:  h.MinorGroupCode(),
			UnitGroupCode:   h.UnitGroupCode(),
			DivisionName:    h.DivisionName(),
		}
	}
	return dto
}

// FileStore loads and saves the catalog file.
type FileStore struct {
	path   string
	logger *log.Logger
}

// NewFileStore creates a FileStore for the given catalog file path.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the catalog file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the catalog file. A missing or syntactically invalid file is an
// error; individual bad records are skipped with a counted warning.
func (s *FileStore) Load() (occupation.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return occupation.Catalog{}, fmt.Errorf("read catalog file %s: %w", s.path, err)
	}

	var dtos []recordDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return occupation.Catalog{}, fmt.Errorf("parse catalog file %s: %w", s.path, err)
	}

	records := make([]occupation.Record, len(dtos))
	for i, dto := range dtos {
		records[i] = dto.toRecord()
	}

	cat := occupation.NewCatalog(records)
	if cat.Skipped() > 0 {
		s.logger.Warn("skipped invalid catalog records",
			"skipped", cat.Skipped(), "loaded", cat.Len(), "file", s.path)
	}
	s.logger.Info("catalog loaded", "records", cat.Len(), "file", s.path)

	return cat, nil
}

// Save writes the catalog atomically: a temp file in the same directory is
// renamed over the target so readers never see a partial file.
func (s *FileStore) Save(cat occupation.Catalog) error {
	records := cat.Records()
	dtos := make([]recordDTO, len(records))
	for i, r := range records {
		dtos[i] = toDTO(r)
	}

	data, err := json.MarshalIndent(dtos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp catalog file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace catalog file: %w", err)
	}

	return nil
}
