// Package middleware provides HTTP middleware for the API server: request
// logging, security headers, body limits, rate limiting, and the admin gate.
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// ErrorObject is one error in an error response.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// ErrorResponse is the error response wrapper.
type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}

// WriteError maps a domain error onto an HTTP status and writes the error
// body. Unrecognized errors become 500s with the detail suppressed.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *log.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		title = "Validation Error"
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		title = "Unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		title = "Conflict"
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
		title = "Rate Limited"
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
		title = "Service Unavailable"
	default:
		// Internal failures keep their detail in the log, not the response.
		detail = "internal error"
	}

	requestID := chimiddleware.GetReqID(r.Context())

	if logger != nil {
		logger.Error("request error",
			"request_id", requestID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, ErrorResponse{
		Errors: []ErrorObject{
			{
				Status: http.StatusText(status),
				Title:  title,
				Detail: detail,
				ID:     requestID,
			},
		},
	})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
