package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wrenhall/homehub/internal/bus"
	"github.com/wrenhall/homehub/internal/device"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeValidation     = "validation_error"
	ErrCodeBusUnavailable = "bus_unavailable"
	ErrCodeAssistDisabled = "assist_disabled"
	ErrCodeResolution     = "resolution_failed"
	ErrCodeInternal       = "internal_error"
)

// Command rejection codes. Each validator sentinel maps to its own code
// so clients can branch on the kind without parsing the message.
const (
	ErrCodeUnknownDevice    = "unknown_device"
	ErrCodeUnknownAttribute = "unknown_attribute"
	ErrCodeOutOfRange       = "out_of_range"
	ErrCodeReadOnlyDevice   = "read_only_device"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeCommandError maps a command submission failure to a response.
//
// Unknown devices are 404, schema rejections are 400 with a per-kind
// code and the rejection reason, a down bus is 503. Anything else is
// a 500.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, ErrCodeUnknownDevice, "device not found")
	case errors.Is(err, device.ErrUnknownAttribute):
		writeError(w, http.StatusBadRequest, ErrCodeUnknownAttribute, err.Error())
	case errors.Is(err, device.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, ErrCodeOutOfRange, err.Error())
	case errors.Is(err, device.ErrReadOnlyDevice):
		writeError(w, http.StatusBadRequest, ErrCodeReadOnlyDevice, err.Error())
	case errors.Is(err, device.ErrEmptyCommand):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, bus.ErrBusUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeBusUnavailable, "message bus is unavailable")
	default:
		writeInternalError(w, "failed to submit command")
	}
}
