package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/state", s.handleGetDeviceState)
				r.Post("/command", s.handleDeviceCommand)
				r.Get("/energy", s.handleDeviceEnergy)
			})
		})

		// History endpoints
		r.Get("/energy/summary", s.handleEnergySummary)
		r.Get("/security/events", s.handleSecurityEvents)

		// Natural-language commands
		r.Post("/assist/command", s.handleAssistCommand)
	})

	// WebSocket event stream
	r.Get(s.wsPath(), s.handleWebSocket)

	return r
}

// wsPath returns the configured WebSocket endpoint path.
func (s *Server) wsPath() string {
	if s.wsCfg.Path != "" {
		return s.wsCfg.Path
	}
	return "/ws"
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.registry.Count(),
	})
}
