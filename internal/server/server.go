// Package server exposes the retrieval engine over HTTP.
//
// Routes: POST /chat, POST /contact, GET /healthz, and a flag-gated
// debug surface under /debug/. All handlers speak JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/askresume/askresume/internal/config"
	"github.com/askresume/askresume/internal/contact"
	"github.com/askresume/askresume/internal/document"
	"github.com/askresume/askresume/internal/search"
)

// Server is the askresume HTTP server.
type Server struct {
	cfg      *config.Config
	engine   *search.Engine
	docs     *document.Cache
	contacts *contact.Store
}

// New creates a server over the given collaborators.
func New(cfg *config.Config, engine *search.Engine, docs *document.Cache, contacts *contact.Store) *Server {
	return &Server{cfg: cfg, engine: engine, docs: docs, contacts: contacts}
}

// Handler builds the route table wrapped in CORS and request-logging
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /contact", s.handleContact)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	if s.cfg.Server.EnableDebugRoutes {
		mux.HandleFunc("GET /debug/resume", s.handleDebugResume)
		mux.HandleFunc("POST /debug/reload-resume", s.handleDebugReload)
		mux.HandleFunc("GET /debug/retrieve", s.handleDebugRetrieve)
	}

	return s.withRequestLog(s.withCORS(mux))
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.Int("port", s.cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", slog.String("error", err.Error()))
	}
}

// writeError writes a JSON error body in the shape {"detail": ...}.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
