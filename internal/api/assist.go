package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wrenhall/homehub/internal/assist"
)

// AssistCommand is the request body for a natural-language command.
type AssistCommand struct {
	Command string `json:"command"`
}

// handleAssistCommand resolves a natural-language utterance into device
// commands and dispatches them.
//
// The response carries the spoken reply from the language service and
// how many commands actually reached the bus. Partial success is a 200:
// individual command failures are logged, not surfaced.
func (s *Server) handleAssistCommand(w http.ResponseWriter, r *http.Request) {
	if s.resolver == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeAssistDisabled, "natural-language commands are disabled")
		return
	}

	var body AssistCommand
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Command) == "" {
		writeBadRequest(w, "command field is required")
		return
	}

	result, err := s.resolver.Resolve(r.Context(), body.Command)
	if err != nil {
		if errors.Is(err, assist.ErrResolution) {
			writeError(w, http.StatusBadGateway, ErrCodeResolution, "could not resolve command")
			return
		}
		writeInternalError(w, "failed to resolve command")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"response":         result.Response,
		"actions_executed": result.Executed,
	})
}
