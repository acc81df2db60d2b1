package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shramsetu/ncosearch"
	"github.com/shramsetu/ncosearch/domain/audit"
	"github.com/shramsetu/ncosearch/infrastructure/api/middleware"
	"github.com/shramsetu/ncosearch/infrastructure/api/v1/dto"
	"github.com/shramsetu/ncosearch/infrastructure/catalog"
	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// Log read sizes when the limit parameter is absent, and the hard cap.
const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// AdminRouter handles the token-gated admin endpoints.
type AdminRouter struct {
	client *ncosearch.Client
	logger *log.Logger
}

// NewAdminRouter creates a new AdminRouter.
func NewAdminRouter(client *ncosearch.Client) *AdminRouter {
	return &AdminRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for the admin endpoints.
func (r *AdminRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/update-synonyms", r.UpdateSynonyms)
	router.Post("/reindex", r.Reindex)
	router.Get("/logs", r.ReadLogs)
	router.Delete("/logs", r.DeleteLogs)
	router.Delete("/purge-logs", r.PurgeLogs)
	router.Get("/stats", r.Stats)

	return router
}

// UpdateSynonyms handles POST /admin/update-synonyms. Edits land in the
// catalog file; requires_reindex tells the caller when to trigger one.
func (r *AdminRouter) UpdateSynonyms(w http.ResponseWriter, req *http.Request) {
	var body dto.UpdateSynonymsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", domain.ErrValidation, err), r.logger)
		return
	}

	updates := make([]catalog.SynonymUpdate, len(body.Updates))
	for i, u := range body.Updates {
		updates[i] = catalog.NewSynonymUpdate(u.NCOCode, u.Add, u.Remove)
	}

	result, err := r.client.Admin.UpdateSynonyms(req.Context(), updates)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.UpdateSynonymsResponse{
		OK:              true,
		Updated:         result.Updated(),
		InvalidCodes:    result.InvalidCodes(),
		RequiresReindex: result.RequiresReindex(),
	})
}

// Reindex handles POST /admin/reindex. A build already in progress yields
// 409 and leaves the running build untouched.
func (r *AdminRouter) Reindex(w http.ResponseWriter, req *http.Request) {
	report, err := r.client.Reindex.Reindex(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ReindexResponse{
		OK:         true,
		DurationMS: report.Duration.Milliseconds(),
		Vectors:    report.Vectors,
	})
}

// ReadLogs handles GET /admin/logs?type=&limit=.
func (r *AdminRouter) ReadLogs(w http.ResponseWriter, req *http.Request) {
	stream := audit.Stream(req.URL.Query().Get("type"))
	if stream == "" {
		stream = audit.StreamSearch
	}

	limit := defaultLogLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxLogLimit {
			middleware.WriteError(w, req,
				fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxLogLimit), r.logger)
			return
		}
		limit = parsed
	}

	fields := req.URL.Query().Get("fields")
	if fields != "" && fields != "basic" && fields != "full" {
		middleware.WriteError(w, req,
			fmt.Errorf("%w: fields must be basic or full", domain.ErrValidation), r.logger)
		return
	}

	entries, err := r.client.Admin.ReadLogs(req.Context(), stream, limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if fields == "basic" && stream == audit.StreamSearch {
		entries = basicSearchEntries(entries)
	}

	middleware.WriteJSON(w, http.StatusOK, dto.LogsResponse{
		Stream:  string(stream),
		Count:   len(entries),
		Entries: entries,
	})
}

// basicSearchEntries projects search log entries down to the summary view.
func basicSearchEntries(entries []map[string]any) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, entry := range entries {
		basic := map[string]any{
			"timestamp":      entry["timestamp"],
			"query":          entry["query"],
			"language":       entry["language"],
			"low_confidence": entry["low_confidence"],
		}
		if top, ok := entry["top"].(map[string]any); ok {
			basic["top_nco_code"] = top["nco_code"]
			basic["top_score"] = top["score"]
		}
		out[i] = basic
	}
	return out
}

// DeleteLogs handles DELETE /admin/logs?since=. Entries older than the
// cutoff survive.
func (r *AdminRouter) DeleteLogs(w http.ResponseWriter, req *http.Request) {
	raw := req.URL.Query().Get("since")
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		middleware.WriteError(w, req,
			fmt.Errorf("%w: since must be an RFC 3339 timestamp", domain.ErrValidation), r.logger)
		return
	}

	if err := r.client.Admin.DeleteLogs(req.Context(), since); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.DeleteLogsResponse{
		OK:    true,
		Since: since.UTC().Format(time.RFC3339),
	})
}

// PurgeLogs handles DELETE /admin/purge-logs.
func (r *AdminRouter) PurgeLogs(w http.ResponseWriter, req *http.Request) {
	if err := r.client.Admin.PurgeLogs(req.Context()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.Ack{OK: true})
}

// Stats handles GET /admin/stats.
func (r *AdminRouter) Stats(w http.ResponseWriter, req *http.Request) {
	report, err := r.client.Stats.Report(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}
