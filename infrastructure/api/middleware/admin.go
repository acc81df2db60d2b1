package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// AdminToken gates admin routes on a shared token carried in the
// X-Admin-Token header or the token query parameter. An empty configured
// token leaves the routes open, which is the development default.
func AdminToken(token string, logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			supplied := r.Header.Get("X-Admin-Token")
			if supplied == "" {
				supplied = r.URL.Query().Get("token")
			}

			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				WriteError(w, r, fmt.Errorf("%w: invalid admin token", domain.ErrUnauthorized), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
