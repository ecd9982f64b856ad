// Package server exposes the composition engine over HTTP.
//
// Routes:
//
//	GET  /healthz            liveness and build information
//	GET  /api/v1/templates   available templates
//	POST /api/v1/layout      slot geometry for a template (JSON in, JSON out)
//	POST /api/v1/export      multipart "params" JSON plus "photo" parts, PNG out
//
// Every export runs in its own session; nothing about a composition outlives
// the request except the optional artifact cache entry.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/printframe/pkg/cache"
	"github.com/matzehuels/printframe/pkg/export"
	"github.com/matzehuels/printframe/pkg/scene"
)

const (
	// DefaultAddr is the listen address of the service.
	DefaultAddr = ":8080"

	// DefaultMaxUpload bounds the size of an export request body.
	DefaultMaxUpload = 64 << 20

	// DefaultTimeout bounds the handling time of one request.
	DefaultTimeout = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache sets the artifact cache shared by layout and export requests.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) {
		if k != nil {
			s.keyer = k
		}
	}
}

// WithMaxUpload sets the maximum export request size in bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Server is the HTTP service.
type Server struct {
	logger    *log.Logger
	cache     cache.Cache
	keyer     cache.Keyer
	builder   *scene.Builder
	pipeline  *export.Pipeline
	maxUpload int64
	timeout   time.Duration
	router    chi.Router
}

// New returns a server with its routes mounted.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    log.New(io.Discard),
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		maxUpload: DefaultMaxUpload,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.builder = scene.NewBuilder(scene.DefaultStyle(), scene.WithLogger(s.logger))
	s.pipeline = export.New(
		export.WithLogger(s.logger),
		export.WithCache(cache.NewInstrumented(s.cache, "export")),
	)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/templates", s.handleTemplates)
		r.Post("/layout", s.handleLayout)
		r.Post("/export", s.handleExport)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
