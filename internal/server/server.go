// Package server exposes the usage pipeline and the sync store over an
// authenticated HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/screenwatch/screenwatch/internal/api"
	"github.com/screenwatch/screenwatch/internal/config"
	"github.com/screenwatch/screenwatch/internal/syncstore"
)

type Server struct {
	cfg   config.Server
	store *syncstore.Store
	log   *slog.Logger
}

// New opens (creating if needed) the sync store and builds the server.
// The source database path may point at a machine without Screen Time data;
// queries then serve from the sync store.
func New(cfg config.Server, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := syncstore.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("server: open sync store: %w", err)
	}
	return &Server{cfg: cfg, store: store, log: logger}, nil
}

func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Handler builds the route tree. Everything except /health sits behind the
// API-key check.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(g chi.Router) {
		g.Use(s.requireAPIKey)
		g.Post("/upload", s.handleUpload)
		g.Get("/usage", s.handleUsage)
		g.Get("/summary", s.handleSummary)
		g.Get("/daily", s.handleDaily)
		g.Get("/export", s.handleExport)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("server listening", "addr", s.cfg.ListenAddr, "store", s.cfg.StorePath())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return nil
}

// requireAPIKey enforces the shared-secret header. A server with no key
// configured is misconfigured, not open.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.APIKey == "" {
			writeError(w, http.StatusInternalServerError,
				"server API key not configured",
				"set SCREENWATCH_API_KEY on the server")
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			writeError(w, http.StatusUnauthorized,
				"missing API key",
				"provide the X-API-Key header")
			return
		}
		if key != s.cfg.APIKey {
			writeError(w, http.StatusForbidden, "invalid API key", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, hint string) {
	writeJSON(w, status, api.ErrorResponse{Error: message, Hint: hint})
}
