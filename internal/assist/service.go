package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/infrastructure/config"
)

// maxResponseBytes bounds the interpretation response body.
const maxResponseBytes = 1 << 20 // 1MB

// Service calls the external language-understanding HTTP API.
//
// Each request carries the utterance plus a snapshot of the device
// registry (ids, names, rooms, types, current state) so the service can
// ground phrases like "the living room lights" to concrete device ids.
type Service struct {
	cfg    config.AssistConfig
	client *http.Client
}

// NewService creates an interpretation client from configuration.
func NewService(cfg config.AssistConfig) *Service {
	return &Service{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// interpretRequest is the wire shape sent to the service.
type interpretRequest struct {
	Model   string           `json:"model,omitempty"`
	Text    string           `json:"text"`
	Devices []deviceSnapshot `json:"devices"`
}

// deviceSnapshot is the registry view shared with the service.
// The capability schema is included so the service proposes values the
// validator will accept.
type deviceSnapshot struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Room   string        `json:"room"`
	Type   string        `json:"type"`
	Schema device.Schema `json:"schema"`
	State  device.State  `json:"state"`
}

// Interpret sends the utterance and device snapshot to the service and
// decodes the structured intent.
//
// Timeouts, transport failures, non-2xx statuses, and undecodable
// bodies all surface as ErrResolution.
func (s *Service) Interpret(ctx context.Context, text string, devices []device.Device) (*Intent, error) {
	snapshot := make([]deviceSnapshot, 0, len(devices))
	for _, d := range devices {
		snapshot = append(snapshot, deviceSnapshot{
			ID:     d.ID,
			Name:   d.Name,
			Room:   d.Room,
			Type:   string(d.Type),
			Schema: d.Schema,
			State:  d.State,
		})
	}

	body, err := json.Marshal(interpretRequest{
		Model:   s.cfg.Model,
		Text:    text,
		Devices: snapshot,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrResolution, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrResolution, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: service returned %s", ErrResolution, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrResolution, err)
	}

	var intent Intent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrResolution, err)
	}
	if intent.Response == "" && len(intent.Actions) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrResolution)
	}

	return &intent, nil
}
