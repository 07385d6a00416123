package history

import (
	"context"
	"time"
)

// EnergySample is one instantaneous power reading from a device.
type EnergySample struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	PowerWatts float64   `json:"power_watts"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EnergySummary aggregates a device's retained samples.
type EnergySummary struct {
	DeviceID     string  `json:"device_id"`
	AverageWatts float64 `json:"average_watts"`
	PeakWatts    float64 `json:"peak_watts"`
	SampleCount  int64   `json:"sample_count"`
}

// SecurityEvent records a detection from a security-relevant sensor.
type SecurityEvent struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	EventType  string    `json:"event_type"`
	Detail     string    `json:"detail"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EnergyRepository persists and summarises energy samples.
type EnergyRepository interface {
	// Append stores one sample. Failures are logged by callers and never
	// block the in-memory state update.
	Append(ctx context.Context, sample EnergySample) error

	// Summary aggregates all retained samples per device.
	Summary(ctx context.Context) ([]EnergySummary, error)

	// Recent returns a device's newest samples, newest first.
	Recent(ctx context.Context, deviceID string, limit int) ([]EnergySample, error)
}

// SecurityRepository persists security events.
type SecurityRepository interface {
	Append(ctx context.Context, event SecurityEvent) error

	// Recent returns the newest events across all devices, newest first.
	Recent(ctx context.Context, limit int) ([]SecurityEvent, error)
}
