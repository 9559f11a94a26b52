// Package api provides the HTTP server for the CSV to JSON conversion API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/csv2json/internal/config"
	"github.com/JonMunkholm/csv2json/internal/core"
	mw "github.com/JonMunkholm/csv2json/internal/web/middleware"
)

// ConvertPath is the route of the conversion endpoint.
const ConvertPath = "/api/csv2json"

// maxBodyOverhead is the room left for the option fields and the envelope.
const maxBodyOverhead = 64 * 1024

// jsonEscapeFactor is the worst-case growth of a string under json.Marshal:
// '<', '>', '&', control characters and invalid UTF-8 become \uXXXX.
const jsonEscapeFactor = 6

// Server is the HTTP server for the conversion API.
type Server struct {
	cfg      *config.Config
	limiter  *core.Limiter
	registry *prometheus.Registry
	metrics  *metrics
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		limiter:  core.NewLimiter(cfg.API.MaxConcurrent, cfg.API.MaxWaitTime),
		registry: prometheus.NewRegistry(),
		router:   chi.NewRouter(),
	}
	s.metrics = newMetrics(s.registry, s.limiter)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger("/healthz", "/metrics"))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(chimw.Compress(5, "application/json"))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.API.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router.Post(ConvertPath, s.handleConvert)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.API.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting api server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, then waits for in-flight conversions
// to release their slots.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if n := s.limiter.ActiveCount(); n > 0 {
		slog.Info("waiting for conversions to finish", "active", n)
	}
	return s.limiter.WaitForDrain(ctx)
}

// ServeHTTP implements http.Handler so the server can be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// maxBodySize is the request body limit. It admits any content within the
// content limit however it was escaped; the decoded length is checked again
// in decodeRequest.
func (s *Server) maxBodySize() int64 {
	return s.cfg.Upload.MaxFileSize*jsonEscapeFactor + maxBodyOverhead
}
