package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wrenhall/homehub/internal/device"
)

// defaultHistoryLimit caps history queries that omit a limit.
const defaultHistoryLimit = 50

// handleEnergySummary returns per-device aggregates of the retained
// energy samples.
func (s *Server) handleEnergySummary(w http.ResponseWriter, r *http.Request) {
	if s.energy == nil {
		writeInternalError(w, "energy history is not configured")
		return
	}

	summaries, err := s.energy.Summary(r.Context())
	if err != nil {
		s.logger.Warn("energy summary query failed", "error", err)
		writeInternalError(w, "failed to summarise energy history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summaries,
		"count":   len(summaries),
	})
}

// handleDeviceEnergy returns a device's newest energy samples.
//
// Query parameters:
//   - limit: maximum samples to return (default 50)
func (s *Server) handleDeviceEnergy(w http.ResponseWriter, r *http.Request) {
	if s.energy == nil {
		writeInternalError(w, "energy history is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.registry.Get(id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	limit, ok := parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		writeBadRequest(w, "limit must be a positive integer")
		return
	}

	samples, err := s.energy.Recent(r.Context(), id, limit)
	if err != nil {
		s.logger.Warn("energy history query failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to query energy history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"samples":   samples,
		"count":     len(samples),
	})
}

// handleSecurityEvents returns the newest security events across all
// devices.
//
// Query parameters:
//   - limit: maximum events to return (default 50)
func (s *Server) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	if s.security == nil {
		writeInternalError(w, "security history is not configured")
		return
	}

	limit, ok := parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		writeBadRequest(w, "limit must be a positive integer")
		return
	}

	events, err := s.security.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Warn("security event query failed", "error", err)
		writeInternalError(w, "failed to query security events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// parseLimit parses an optional limit query value. An empty value falls
// back to the default; zero, negative, or non-numeric values are rejected.
func parseLimit(raw string) (int, bool) {
	if raw == "" {
		return defaultHistoryLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}
