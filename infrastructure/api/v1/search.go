// Package v1 wires the public and admin HTTP routes of the service.
package v1

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shramsetu/ncosearch"
	"github.com/shramsetu/ncosearch/domain/occupation"
	"github.com/shramsetu/ncosearch/domain/search"
	"github.com/shramsetu/ncosearch/infrastructure/api/middleware"
	"github.com/shramsetu/ncosearch/infrastructure/api/v1/dto"
	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// SearchRouter handles the public endpoints: search, occupation lookup,
// feedback, and health.
type SearchRouter struct {
	client *ncosearch.Client
	logger *log.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *ncosearch.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for the public endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/search", r.Search)
	router.Get("/occupation/{code}", r.Occupation)
	router.Post("/feedback", r.Feedback)
	router.Get("/health", r.Health)

	return router
}

// Search handles POST /search.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", domain.ErrValidation, err), r.logger)
		return
	}

	query, err := buildQuery(body)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response, err := r.client.Search.Search(req.Context(), query, req.UserAgent())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildSearchResponse(response))
}

// Occupation handles GET /occupation/{code}.
func (r *SearchRouter) Occupation(w http.ResponseWriter, req *http.Request) {
	record, err := r.client.Search.Lookup(chi.URLParam(req, "code"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildOccupation(record))
}

// Feedback handles POST /feedback.
func (r *SearchRouter) Feedback(w http.ResponseWriter, req *http.Request) {
	var body dto.FeedbackRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: %v", domain.ErrValidation, err), r.logger)
		return
	}

	err := r.client.Feedback.Submit(body.Query, body.SelectedCode, body.ResultsHelpful,
		body.Comments, req.UserAgent())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.Ack{OK: true})
}

// Health handles GET /health. The service stays available during reindex;
// the status string is the only signal a build is running.
func (r *SearchRouter) Health(w http.ResponseWriter, req *http.Request) {
	status := "healthy"
	if r.client.Reindex.Reindexing() {
		status = "reindexing"
	}

	cfg := r.client.Config()
	model := cfg.EmbedModel()
	if snap, err := r.client.Snapshots().Current(); err == nil {
		model = snap.Model()
	}

	middleware.WriteJSON(w, http.StatusOK, dto.Health{
		Status:        status,
		Model:         model,
		VectorsLoaded: r.client.Snapshots().VectorsLoaded(),
		Version:       r.client.Version(),
		BuildTime:     cfg.BuildTime(),
		GitSHA:        cfg.GitSHA(),
	})
}

func buildQuery(body dto.SearchRequest) (search.Query, error) {
	k := 0
	if body.K != nil {
		if *body.K == 0 {
			return search.Query{}, fmt.Errorf("%w: k must be between %d and %d, got 0",
				domain.ErrValidation, search.MinK, search.MaxK)
		}
		k = *body.K
	}

	var opts []search.QueryOption
	if body.Language != "" {
		opts = append(opts, search.WithLanguage(search.ParseLanguage(body.Language)))
	}
	if body.DivisionCode != "" {
		opts = append(opts, search.WithDivisionFilter(body.DivisionCode))
	}
	if body.MinorGroupCode != "" {
		opts = append(opts, search.WithMinorGroupFilter(body.MinorGroupCode))
	}
	return search.NewQuery(body.Query, k, opts...)
}

func buildSearchResponse(response search.Response) dto.SearchResponse {
	results := response.Results()

	data := make([]dto.SearchResult, len(results))
	for i, r := range results {
		data[i] = dto.SearchResult{
			Code:            r.Code(),
			Title:           r.Title(),
			Description:     r.Description(),
			Score:           r.Score(),
			Confidence:      r.Confidence(),
			MatchedSynonyms: r.MatchedSynonyms(),
		}
	}

	return dto.SearchResponse{
		Results:       data,
		LowConfidence: response.LowConfidence(),
		Language:      string(response.Language()),
		Translated:    response.Translated(),
		Suggestions:   response.Suggestions(),
		Alternatives:  response.Alternatives(),
	}
}

func buildOccupation(record occupation.Record) dto.Occupation {
	out := dto.Occupation{
		NCOCode:     record.Code(),
		Title:       record.Title(),
		Description: record.Description(),
		Synonyms:    record.Synonyms(),
		Examples:    record.Examples(),
	}
	if out.Synonyms == nil {
		out.Synonyms = []string{}
	}

	if h := record.Hierarchy(); !h.IsZero() {
		out.Hierarchy = &dto.Hierarchy{
			DivisionCode:    h.DivisionCode(),
			SubDivisionCode: h.SubDivisionCode(),
			MinorGroupCode:  h.MinorGroupCode(),
			UnitGroupCode:   h.UnitGroupCode(),
			DivisionName:    h.DivisionName(),
		}
	}
	return out
}
