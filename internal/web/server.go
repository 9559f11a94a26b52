// Package web provides the HTTP server and handlers for the CSV upload form.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csv2json/internal/client"
	"github.com/JonMunkholm/csv2json/internal/config"
	"github.com/JonMunkholm/csv2json/internal/core"
	mw "github.com/JonMunkholm/csv2json/internal/web/middleware"
)

// Converter sends a conversion request to the API.
type Converter interface {
	Convert(ctx context.Context, req core.ConversionRequest) (*client.Result, error)
}

// Server is the HTTP server for the upload front end.
type Server struct {
	cfg       *config.Config
	converter Converter
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, converter Converter) *Server {
	s := &Server{
		cfg:       cfg,
		converter: converter,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger("/healthz"))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(chimw.Compress(5, "text/html"))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(s.handleNotFound)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/convert", s.handleConvert)
	s.router.Get("/convert", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
	s.router.Get("/healthz", s.handleHealth)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.UI.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting ui server", "addr", s.server.Addr, "api_url", s.cfg.UI.APIURL)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler so the server can be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
