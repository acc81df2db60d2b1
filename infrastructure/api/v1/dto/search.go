// Package dto defines the wire types of the v1 API.
package dto

// SearchRequest is the POST /search body. K is a pointer so an absent k
// takes the default while an explicit zero is rejected.
type SearchRequest struct {
	Query          string `json:"query"`
	K              *int   `json:"k,omitempty"`
	Language       string `json:"language,omitempty"`
	DivisionCode   string `json:"division_code,omitempty"`
	MinorGroupCode string `json:"minor_group_code,omitempty"`
}

// SearchResult is one annotated hit.
type SearchResult struct {
	Code            string   `json:"code"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Score           float64  `json:"score"`
	Confidence      float64  `json:"confidence"`
	MatchedSynonyms []string `json:"matched_synonyms"`
}

// SearchResponse is the POST /search response.
type SearchResponse struct {
	Results       []SearchResult `json:"results"`
	LowConfidence bool           `json:"low_confidence"`
	Language      string         `json:"language"`
	Translated    bool           `json:"translated"`
	Suggestions   []string       `json:"suggestions,omitempty"`
	Alternatives  []string       `json:"alternatives,omitempty"`
}

// Hierarchy is the classification block of an occupation record.
type Hierarchy struct {
	DivisionCode    string `json:"division_code,omitempty"`
	SubDivisionCode string `json:"sub_division_code,omitempty"`
	MinorGroupCode  string `json:"minor_group_code,omitempty"`
	UnitGroupCode   string `json:"unit_group_code,omitempty"`
	DivisionName    string `json:"division_name,omitempty"`
}

// Occupation is the GET /occupation/{code} response.
type Occupation struct {
	NCOCode     string     `json:"nco_code"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Synonyms    []string   `json:"synonyms"`
	Examples    []string   `json:"examples,omitempty"`
	Hierarchy   *Hierarchy `json:"hierarchy,omitempty"`
}

// FeedbackRequest is the POST /feedback body.
type FeedbackRequest struct {
	Query          string `json:"query"`
	SelectedCode   string `json:"selected_code,omitempty"`
	ResultsHelpful bool   `json:"results_helpful"`
	Comments       string `json:"comments,omitempty"`
}

// Ack is a plain success acknowledgement.
type Ack struct {
	OK bool `json:"ok"`
}

// Health is the GET /health response.
type Health struct {
	Status        string `json:"status"`
	Model         string `json:"model"`
	VectorsLoaded int    `json:"vectors_loaded"`
	Version       string `json:"version"`
	BuildTime     string `json:"build_time,omitempty"`
	GitSHA        string `json:"git_sha,omitempty"`
}
