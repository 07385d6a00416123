package assist

import (
	"context"

	"github.com/wrenhall/homehub/internal/device"
)

// Intent is the structured output of the language-understanding
// service for one user utterance.
type Intent struct {
	// Actions is the ordered list of device changes the service derived
	// from the utterance. May be empty for purely conversational input.
	Actions []Action `json:"actions"`

	// Response is the human-readable reply to show the user.
	Response string `json:"response"`
}

// Action targets one device or a group of devices.
//
// Exactly one of DeviceID or the DeviceType/Room pair should be set:
// an explicit id targets that device, a type targets every device of
// that type, and a room narrows the selection further ("all lights in
// the bedroom").
type Action struct {
	DeviceID   string `json:"device_id,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Room       string `json:"room,omitempty"`

	// Attributes is the proposed attribute->value mapping. It is
	// untrusted and validated per device before dispatch.
	Attributes map[string]any `json:"attributes"`
}

// Interpreter turns a natural-language utterance into an Intent,
// grounded on the current device snapshot. Implemented by Service;
// tests substitute a fake.
type Interpreter interface {
	Interpret(ctx context.Context, text string, devices []device.Device) (*Intent, error)
}

// Result reports the outcome of resolving one utterance.
type Result struct {
	// Response is the human-readable reply from the language service.
	Response string `json:"response"`

	// Executed counts the commands successfully dispatched. Partial
	// dispatch is possible: some expanded commands may fail validation
	// or hit a downed bus while others succeed.
	Executed int `json:"actions_executed"`
}
