// Package server provides the HTTP server for handsoff.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/handsoff/internal/capture"
	"github.com/ayusman/handsoff/internal/logger"
	"github.com/ayusman/handsoff/internal/server/api"
	"github.com/ayusman/handsoff/internal/session"
	"github.com/ayusman/handsoff/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Session   *session.Session

	// Context bounds commands started over HTTP. Defaults to Background.
	Context context.Context
}

// Server represents the HTTP server for handsoff.
type Server struct {
	config Config
	mux    *http.ServeMux
	events *EventsHandler
	start  time.Time
	log    *logger.Logger

	mu   sync.Mutex
	http *http.Server
}

// New creates a new Server with the given configuration. When a session is
// configured, the server subscribes its event feed to it.
func New(config Config) *Server {
	if config.Context == nil {
		config.Context = context.Background()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		events: NewEventsHandler(),
		start:  time.Now(),
		log:    logger.Named("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Session != nil {
		sessionHandler := api.NewSessionHandler(s.config.Context, s.config.Session)
		s.mux.Handle("/api/session", sessionHandler)
		s.mux.Handle("/api/session/", sessionHandler)

		s.config.Session.AddObserver(s.events)
		s.mux.Handle("/api/events", s.events)
	}

	if s.config.Store != nil {
		episodes := api.NewEpisodesHandler(s.config.Store)
		s.mux.Handle("/api/episodes", episodes)
		s.mux.Handle("/api/episodes/", episodes)
		s.mux.Handle("/api/training-runs", api.NewTrainingRunsHandler(s.config.Store))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Events returns the websocket event feed.
func (s *Server) Events() *EventsHandler {
	return s.events
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Session != nil {
		response["phase"] = s.config.Session.Phase().String()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.log.Info().Str("addr", addr).Msg("http server listening")

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
