// Package server provides the HTTP server for the Visage face detection system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/visage/internal/capture"
	"github.com/ayusman/visage/internal/detector"
	"github.com/ayusman/visage/internal/pipeline"
	"github.com/ayusman/visage/internal/server/api"
	"github.com/ayusman/visage/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Pipeline  *pipeline.Pipeline
	Camera    capture.Camera
}

// Server represents the HTTP server for the Visage application.
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

	// Register event log API handler if Store is configured
	if s.config.Store != nil {
		eventsHandler := api.NewEventsHandler(s.config.Store)
		s.mux.Handle("/api/events", eventsHandler)
		s.mux.Handle("/api/events/", eventsHandler)
	}

	if s.config.Pipeline != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.HandleFunc("/api/detection", s.handleDetection)

		// Results WebSocket pushes each published detection result
		resultsHandler := NewResultsHandler(s.config.Pipeline)
		s.mux.Handle("/api/results", resultsHandler)
	}

	// Register camera stream endpoint if Camera is configured
	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
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

type statusResponse struct {
	Status    string                `json:"status"`
	FaceCount int                   `json:"face_count"`
	Faces     []detector.FaceRegion `json:"faces"`
	Enabled   bool                  `json:"enabled"`
	Busy      bool                  `json:"busy"`
}

// handleStatus handles GET requests to /api/status. It reflects the last
// published detection result and the gate's current flags.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.config.Pipeline.State()
	faces := state.Faces()

	response := statusResponse{
		Status:    state.Status(),
		FaceCount: len(faces),
		Faces:     faces,
		Enabled:   s.config.Pipeline.Gate().Enabled(),
		Busy:      s.config.Pipeline.Gate().Busy(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type detectionRequest struct {
	Enabled bool `json:"enabled"`
}

// handleDetection handles POST requests to /api/detection, toggling
// frame admission. An in-flight detection is never cancelled.
func (s *Server) handleDetection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req detectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.config.Pipeline.SetEnabled(req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": req.Enabled})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
