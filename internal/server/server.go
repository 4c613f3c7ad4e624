// Package server exposes the layout runner over HTTP.
//
// Routes:
//
//	GET  /healthz               liveness and build information
//	GET  /v1/options            every layout option with its default
//	POST /v1/layout             lay out one graph
//	POST /v1/layout/batch       lay out several graphs concurrently
//	POST /v1/debug/{phase}      capture the layout graph after a phase
//	GET  /metrics               Prometheus metrics, when a gatherer is set
//
// Identical concurrent layout requests share one computation.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/sugiyama/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 8 << 20

// Server is the HTTP layout service.
type Server struct {
	runner    *pipeline.Runner
	router    chi.Router
	server    *http.Server
	logger    *log.Logger
	gatherer  prometheus.Gatherer
	maxBody   int64
	group     singleflight.Group
	startTime time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to the runner's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves the metrics of g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithMaxBodyBytes bounds request bodies. Defaults to DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New creates a server that lays out graphs with runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		logger:    runner.Logger,
		maxBody:   DefaultMaxBodyBytes,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/layout", s.handleLayout)
		r.Post("/layout/batch", s.handleBatch)
		r.Post("/debug/{phase}", s.handleDebug)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler for use with httptest or custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("layout server starting", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
