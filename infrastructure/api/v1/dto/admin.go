package dto

// SynonymUpdate is one batch edit on an occupation's synonym set.
type SynonymUpdate struct {
	NCOCode string   `json:"nco_code"`
	Add     []string `json:"add,omitempty"`
	Remove  []string `json:"remove,omitempty"`
}

// UpdateSynonymsRequest is the POST /admin/update-synonyms body.
type UpdateSynonymsRequest struct {
	Updates []SynonymUpdate `json:"updates"`
}

// UpdateSynonymsResponse reports the outcome of a synonym batch.
type UpdateSynonymsResponse struct {
	OK              bool     `json:"ok"`
	Updated         int      `json:"updated"`
	InvalidCodes    []string `json:"invalid_codes"`
	RequiresReindex bool     `json:"requires_reindex"`
}

// ReindexResponse is the POST /admin/reindex response.
type ReindexResponse struct {
	OK         bool  `json:"ok"`
	DurationMS int64 `json:"duration_ms"`
	Vectors    int   `json:"vectors"`
}

// LogsResponse is the GET /admin/logs response.
type LogsResponse struct {
	Stream  string           `json:"stream"`
	Count   int              `json:"count"`
	Entries []map[string]any `json:"entries"`
}

// DeleteLogsResponse is the DELETE /admin/logs response.
type DeleteLogsResponse struct {
	OK    bool   `json:"ok"`
	Since string `json:"since"`
}
