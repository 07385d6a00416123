package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wrenhall/homehub/internal/device"
)

// handleListDevices returns all devices in registration order.
//
// Query parameters:
//   - room: filter by room (case-insensitive)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.registry.List(r.URL.Query().Get("room"))
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleGetDeviceState returns the current state of a device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.registry.Get(id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":    dev.ID,
		"state":        dev.State,
		"connectivity": dev.Connectivity,
		"last_updated": dev.LastUpdated,
	})
}

// DeviceCommand is the request body for a device command.
type DeviceCommand struct {
	Attributes map[string]any `json:"attributes"`
}

// handleDeviceCommand validates a command and publishes it to the bus.
//
// This is an asynchronous operation: the command is published to the
// device's control topic and the response is 202 Accepted. The registry
// changes only when the device confirms on its status topic, and the
// confirmed state arrives via WebSocket.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body DeviceCommand
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	cmd, err := s.validator.Validate(id, body.Attributes, device.OriginAPI)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	if s.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeBusUnavailable, "message bus is unavailable")
		return
	}
	if err := s.dispatcher.PublishCommand(cmd); err != nil {
		writeCommandError(w, err)
		return
	}

	commandID := uuid.NewString()
	s.logger.Info("device command accepted",
		"device_id", id,
		"command_id", commandID,
		"attributes", cmd.Attributes,
		"origin", cmd.Origin,
	)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"command_id": commandID,
		"status":     "accepted",
		"device_id":  id,
		"message":    "command published, state update will follow via WebSocket",
	})
}
