// Package server provides the HTTP server for the Kuchipudi gesture recognition system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/kuchipudi/internal/capture"
	"github.com/ayusman/kuchipudi/internal/detector"
	"github.com/ayusman/kuchipudi/internal/engine"
	"github.com/ayusman/kuchipudi/internal/server/api"
	"github.com/ayusman/kuchipudi/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Detector  detector.Detector
	Engine    *engine.Engine
	Hub       *Hub
}

// Server represents the HTTP server for the Kuchipudi application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register template CRUD handlers if Store is configured. The three
	// resources share one handler implementation parameterized by
	// repository and mount path, since they're all name+JSON-blob shaped.
	if s.config.Store != nil {
		poses := api.NewTemplateHandler(s.config.Store.Poses(), "/api/poses")
		sequences := api.NewTemplateHandler(s.config.Store.Sequences(), "/api/sequences")
		trajectories := api.NewTemplateHandler(s.config.Store.Trajectories(), "/api/trajectories")
		actions := api.NewActionHandler(s.config.Store)

		s.mux.Handle("/api/poses", poses)
		s.mux.Handle("/api/poses/", poses)
		s.mux.Handle("/api/sequences", sequences)
		s.mux.Handle("/api/sequences/", sequences)
		s.mux.Handle("/api/trajectories", trajectories)
		s.mux.Handle("/api/trajectories/", trajectories)
		s.mux.Handle("/api/actions", actions)
		s.mux.Handle("/api/actions/", actions)
	}

	// Register camera stream endpoint if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Register the event-stream WebSocket endpoint if a Hub is configured.
	// The Hub replaces the old raw per-frame landmark broadcast with a
	// typed recognition-event stream (gestures, sequences, trajectories,
	// bimanual gestures, canvas commands, stats).
	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	// Expose engine metrics in Prometheus text-exposition format.
	if s.config.Engine != nil {
		s.mux.HandleFunc("/metrics", s.handleMetrics)
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

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleMetrics handles GET requests to /metrics, rendering the engine's
// Prometheus text-exposition output.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Write([]byte(s.config.Engine.Metrics().Render()))
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
