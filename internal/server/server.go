// Package server exposes the analytics read side over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielvsantos/finance-dashboard/internal/analytics"
	"github.com/danielvsantos/finance-dashboard/internal/service"
)

// Server serves the analytics query API. The read side is stateless and
// idempotent; handlers can run concurrently without coordination.
type Server struct {
	httpServer *http.Server
	queries    *analytics.Service
	store      service.Storage
	targets    []string
}

// Config holds configuration options for the server.
type Config struct {
	Addr string
	// TargetCurrencies drive the rate-gap report's cross join.
	TargetCurrencies []string
}

// New creates a server over the given store.
func New(store service.Storage, config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	targets := config.TargetCurrencies
	if len(targets) == 0 {
		targets = analytics.DefaultTargetCurrencies
	}

	s := &Server{
		queries: analytics.NewService(store),
		store:   store,
		targets: targets,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/rate-gaps", s.handleRateGaps)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run starts the server and blocks until the context is canceled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("analytics server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down analytics server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler returns the server's HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// logRequests is a slog request logging middleware.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
