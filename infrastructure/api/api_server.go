package api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shramsetu/ncosearch"
	apimiddleware "github.com/shramsetu/ncosearch/infrastructure/api/middleware"
	v1 "github.com/shramsetu/ncosearch/infrastructure/api/v1"
	"github.com/shramsetu/ncosearch/internal/config"
	"github.com/shramsetu/ncosearch/internal/log"
)

// APIServer provides the HTTP API backed by an ncosearch Client.
//
// Public routes (search, occupation, feedback, health) sit behind the search
// rate limit; /admin routes sit behind their own limit plus the admin token.
type APIServer struct {
	client       *ncosearch.Client
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *log.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
func NewAPIServer(client *ncosearch.Client) *APIServer {
	return &APIServer{
		client: client,
		logger: client.Logger(),
	}
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call
// MountRoutes(). If not called, ListenAndServe creates a default router.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	cfg := a.client.Config()

	router.Use(apimiddleware.Logging(a.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Token", "X-Rate-Key"},
		MaxAge:         300,
	}))
	router.Use(apimiddleware.SecurityHeaders)
	router.Use(apimiddleware.BodyLimit(config.DefaultMaxBodyBytes))

	searchLimiter := apimiddleware.NewRateLimiter(cfg.RateLimitSearch(), cfg.AllowTestRateKey(), a.logger)
	adminLimiter := apimiddleware.NewRateLimiter(cfg.RateLimitAdmin(), cfg.AllowTestRateKey(), a.logger)

	router.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(searchLimiter.Handler())
		r.Mount("/", v1.NewSearchRouter(a.client).Routes())
	})

	// Admin routes carry no request timeout: reindex is bounded by its own
	// configured deadline, which can exceed any sensible HTTP timeout.
	router.Route("/admin", func(r chi.Router) {
		r.Use(adminLimiter.Handler())
		r.Use(apimiddleware.AdminToken(cfg.AdminToken(), a.logger))
		r.Mount("/", v1.NewAdminRouter(a.client).Routes())
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
