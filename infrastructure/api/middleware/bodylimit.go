package middleware

import (
	"net/http"
	"strings"
)

// BodyLimit rejects JSON POST and PUT requests whose declared length exceeds
// maxBytes with 413, and caps the readable body for the ones it admits so an
// understated Content-Length cannot bypass the limit.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited := (r.Method == http.MethodPost || r.Method == http.MethodPut) &&
				strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")

			if limited {
				if r.ContentLength > maxBytes {
					WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
						Errors: []ErrorObject{{
							Status: http.StatusText(http.StatusRequestEntityTooLarge),
							Title:  "Request Body Too Large",
						}},
					})
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}
