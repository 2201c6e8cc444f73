// Package server is the HTTP shell around the scrape pipeline: routing,
// rate limiting, CORS, and request-size limits.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/threadsnap/threadsnap/internal/logger"
)

// Config configures the HTTP server.
type Config struct {
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server wires the handler into net/http.
type Server struct {
	httpSrv *http.Server
}

// New builds the server. The rate limit guards the scrape route only;
// health stays cheap and unmetered.
func New(cfg Config, h *Handler) *Server {
	limiter := newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	mux := http.NewServeMux()
	mux.Handle("POST /api/scrape", limiter.middleware(http.HandlerFunc(h.handleScrape)))
	mux.HandleFunc("GET /health", h.handleHealth)

	return &Server{
		httpSrv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: cors(mux),
			// A scrape can legitimately hold the connection for the
			// navigation ceiling plus challenge and settle waits.
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
