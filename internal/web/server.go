// Package web provides the HTTP surface of the synchronizer: trigger
// endpoints for the three sync domains, a status endpoint, and health.
package web

import (
	"context"
	"net/http"

	"crmsync/internal/config"
	syncsvc "crmsync/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger verifies connectivity to the row source for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the synchronizer API.
type Server struct {
	svc    *syncsvc.Service
	db     Pinger
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server wired to the sync service and the row source.
func NewServer(svc *syncsvc.Service, db Pinger, cfg *config.Config) *Server {
	s := &Server{
		svc:    svc,
		db:     db,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/products", s.handleSyncProducts)
			r.Post("/prices", s.handleSyncPriceLists)
			r.Post("/images", s.handleSyncImages)
		})
	})
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
