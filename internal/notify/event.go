package notify

import "time"

// EventType classifies a push notification.
type EventType string

// Event classes. Security alerts are distinguished so clients can treat
// them as urgent rather than batching them with routine updates.
const (
	EventDeviceUpdate  EventType = "device_update"
	EventSecurityAlert EventType = "security_alert"
)

// Event is one push notification delivered to every live subscriber.
type Event struct {
	Type EventType `json:"type"`

	// DeviceID identifies the device for both event classes.
	DeviceID string `json:"device_id"`

	// Attributes carries the changed attribute values for device_update
	// events. Empty for security alerts.
	//
	// Besides capability-schema attributes, the reserved key
	// "connectivity" reports reachability changes ("online"/"offline"),
	// such as a device going stale. It is never a controllable attribute.
	Attributes map[string]any `json:"attributes,omitempty"`

	// Description is the human-readable summary for security_alert events.
	Description string `json:"description,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// DeviceUpdate builds a device_update event.
func DeviceUpdate(deviceID string, attributes map[string]any, at time.Time) Event {
	return Event{
		Type:       EventDeviceUpdate,
		DeviceID:   deviceID,
		Attributes: attributes,
		Timestamp:  at,
	}
}

// SecurityAlert builds a security_alert event.
func SecurityAlert(deviceID, description string, at time.Time) Event {
	return Event{
		Type:        EventSecurityAlert,
		DeviceID:    deviceID,
		Description: description,
		Timestamp:   at,
	}
}
