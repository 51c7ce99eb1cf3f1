// Package server exposes the HTTP surface: scanner views as JSON,
// health and readiness probes, and the metrics endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tokenscan/internal/connection"
	"tokenscan/internal/metrics"
	"tokenscan/internal/store"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// StateReporter reports the streaming connection state, used by the
// readiness probe.
type StateReporter interface {
	State() connection.State
}

// Server serves the scanner API.
type Server struct {
	cfg    Config
	logger *zap.Logger
	srv    *http.Server
}

// New builds the server and its routes.
func New(cfg Config, st *store.Store, conn StateReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handlers{store: st, conn: conn, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)
	r.Get("/api/scanner", h.scanner)
	r.Handle("/metrics", metrics.Handler())

	return &Server{
		cfg:    cfg,
		logger: logger,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start begins serving. It returns once the listener stops; a clean
// shutdown reports no error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.cfg.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
