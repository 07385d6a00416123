package device

import "time"

// Device represents a controllable or monitorable entity in the system.
// Devices are registered once at startup from the definition file and
// live for the process lifetime; their state is mutated exclusively
// through Registry.ApplyDelta.
type Device struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`

	// Room is a free-form label; grouping and filtering are case-insensitive.
	Room string `json:"room"`

	// Classification
	Type DeviceType `json:"type"`

	// Schema describes the controllable attributes for this device's type.
	Schema Schema `json:"schema"`

	// Current state. Every attribute is guaranteed to be within the
	// schema's declared range; values outside it are rejected, not clamped.
	State State `json:"state"`

	// Connectivity is derived from recency of inbound bus messages.
	Connectivity Connectivity `json:"connectivity"`

	// LastUpdated is the timestamp of the most recent inbound message.
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// DeepCopy creates a complete independent copy of the Device.
// Map fields are cloned so modifications to the copy do not affect
// the original. This is essential for registry cache isolation.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d // Shallow copy of value fields

	cpy.State = copyState(d.State)
	cpy.Schema = d.Schema.deepCopy()

	if d.LastUpdated != nil {
		t := *d.LastUpdated
		cpy.LastUpdated = &t
	}

	return &cpy
}

// copyState creates an independent copy of a state map.
// Values are flat (bool, string, float64) per the bus payload contract,
// so a value copy is sufficient.
func copyState(s State) State {
	if s == nil {
		return nil
	}
	cpy := make(State, len(s))
	for k, v := range s {
		cpy[k] = v
	}
	return cpy
}

// State holds the current device state as a flat attribute map.
//
// Examples:
//   - Light: {"power": "on", "brightness": 75}
//   - AC: {"power": "on", "temperature": 22, "mode": "cool"}
type State map[string]any

// DeviceType represents the specific kind of device.
type DeviceType string //nolint:revive // device.DeviceType is clearer than device.Type in calling code

// Known device types. The set is open: unknown types are accepted at
// registration but carry an empty, read-only capability schema.
const (
	DeviceTypeLight          DeviceType = "light"
	DeviceTypeFan            DeviceType = "fan"
	DeviceTypeAirConditioner DeviceType = "ac"
	DeviceTypeMotionSensor   DeviceType = "motion_sensor"
)

// Connectivity represents whether a device has reported recently.
type Connectivity string

// Connectivity constants.
const (
	ConnectivityOnline  Connectivity = "online"
	ConnectivityOffline Connectivity = "offline"
)

// Origin identifies where a command was submitted from.
type Origin string

// Origin constants.
const (
	OriginAPI    Origin = "api"
	OriginAssist Origin = "assist"
)

// Command is a validated control request for a single device.
// Commands are transient: they exist only between validation and
// dispatch and are never persisted.
type Command struct {
	DeviceID string `json:"device_id"`

	// Attributes is the partial attribute->value mapping being changed.
	Attributes map[string]any `json:"attributes"`

	Origin      Origin    `json:"origin"`
	SubmittedAt time.Time `json:"submitted_at"`
}
