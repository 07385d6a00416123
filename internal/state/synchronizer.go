package state

import (
	"context"
	"errors"
	"time"

	"github.com/wrenhall/homehub/internal/bus"
	"github.com/wrenhall/homehub/internal/device"
	"github.com/wrenhall/homehub/internal/history"
	"github.com/wrenhall/homehub/internal/notify"
)

// motionAttribute is the sensor payload flag that marks a security event.
const motionAttribute = "motion_detected"

// Registry is the device-state surface the synchronizer mutates.
// Satisfied by *device.Registry.
type Registry interface {
	ApplyDelta(id string, delta map[string]any, at time.Time) (*device.Device, error)
	MarkOnline(id string, at time.Time) error
}

// Notifier receives broadcasts for successful state changes and
// security events. Satisfied by *notify.Hub.
type Notifier interface {
	Broadcast(event notify.Event)
}

// Metrics mirrors energy samples to a time-series store.
// Satisfied by *influxdb.Client; nil disables mirroring.
type Metrics interface {
	WriteEnergySample(deviceID string, powerWatts float64, at time.Time)
}

// Logger is the logging surface used by the synchronizer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Synchronizer routes decoded bus messages to the registry, history
// stores, and notification hub.
//
// Routing by channel:
//   - status: apply the delta to the registry; broadcast device_update.
//   - sensor: motion flags append a security event and broadcast a
//     security_alert; remaining attributes apply as a normal delta.
//   - energy: append an energy sample and refresh device recency; the
//     registry's attribute state is untouched (power draw is
//     observational, not controllable).
//
// Validation rejections and history write failures are logged and never
// stop the stream: live state freshness beats history completeness, and
// a bad message must not crash the loop.
type Synchronizer struct {
	registry Registry
	notifier Notifier
	energy   history.EnergyRepository
	security history.SecurityRepository
	metrics  Metrics
	logger   Logger
}

// Config collects the synchronizer's collaborators.
type Config struct {
	Registry Registry
	Notifier Notifier
	Energy   history.EnergyRepository
	Security history.SecurityRepository

	// Metrics is optional; nil disables the time-series mirror.
	Metrics Metrics

	Logger Logger
}

// NewSynchronizer creates a synchronizer.
func NewSynchronizer(cfg Config) *Synchronizer {
	return &Synchronizer{
		registry: cfg.Registry,
		notifier: cfg.Notifier,
		energy:   cfg.Energy,
		security: cfg.Security,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// Run consumes the inbound stream until the context is cancelled or the
// channel closes. It is the single consumer of the gateway's channel.
func (s *Synchronizer) Run(ctx context.Context, inbound <-chan bus.InboundMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			s.Process(ctx, msg)
		}
	}
}

// Process routes one decoded message. Exposed for tests; Run is the
// production entry point.
func (s *Synchronizer) Process(ctx context.Context, msg bus.InboundMessage) {
	switch msg.Kind {
	case bus.ChannelStatus:
		s.applyDelta(msg.DeviceID, msg.Attributes, msg.ReceivedAt)
	case bus.ChannelSensor:
		s.handleSensor(ctx, msg)
	case bus.ChannelEnergy:
		s.handleEnergy(ctx, msg)
	default:
		s.logger.Warn("unknown channel kind", "device_id", msg.DeviceID, "kind", string(msg.Kind))
	}
}

// applyDelta applies attributes to the registry and broadcasts on success.
func (s *Synchronizer) applyDelta(deviceID string, attrs map[string]any, at time.Time) {
	if len(attrs) == 0 {
		if err := s.registry.MarkOnline(deviceID, at); err != nil {
			s.logger.Warn("dropping message from unknown device", "device_id", deviceID)
		}
		return
	}

	_, err := s.registry.ApplyDelta(deviceID, attrs, at)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			// Bus noise must not fabricate devices.
			s.logger.Warn("dropping message from unknown device", "device_id", deviceID)
		default:
			s.logger.Info("rejected inbound delta", "device_id", deviceID, "error", err)
		}
		return
	}

	s.notifier.Broadcast(notify.DeviceUpdate(deviceID, attrs, at))
}

// handleSensor splits a sensor reading into its security and
// state-delta parts.
func (s *Synchronizer) handleSensor(ctx context.Context, msg bus.InboundMessage) {
	rest := msg.Attributes

	if motion, ok := msg.Attributes[motionAttribute].(bool); ok {
		rest = make(map[string]any, len(msg.Attributes))
		for k, v := range msg.Attributes {
			if k != motionAttribute {
				rest[k] = v
			}
		}
		if motion {
			s.recordSecurityEvent(ctx, msg.DeviceID, msg.ReceivedAt)
		}
	}

	s.applyDelta(msg.DeviceID, rest, msg.ReceivedAt)
}

// recordSecurityEvent appends a motion event and raises the urgent broadcast.
func (s *Synchronizer) recordSecurityEvent(ctx context.Context, deviceID string, at time.Time) {
	description := "Motion detected by " + deviceID

	event := history.SecurityEvent{
		DeviceID:   deviceID,
		EventType:  "motion_detected",
		Detail:     description,
		OccurredAt: at,
	}
	if err := s.security.Append(ctx, event); err != nil {
		// History loss is tolerable; the live alert still goes out.
		s.logger.Error("failed to persist security event", "device_id", deviceID, "error", err)
	}

	s.notifier.Broadcast(notify.SecurityAlert(deviceID, description, at))
}

// handleEnergy appends a power sample without touching attribute state.
func (s *Synchronizer) handleEnergy(ctx context.Context, msg bus.InboundMessage) {
	watts, ok := numericAttribute(msg.Attributes, "power_watts", "power")
	if !ok || watts < 0 {
		s.logger.Info("energy message without a usable power reading", "device_id", msg.DeviceID)
		return
	}

	if err := s.registry.MarkOnline(msg.DeviceID, msg.ReceivedAt); err != nil {
		s.logger.Warn("dropping message from unknown device", "device_id", msg.DeviceID)
		return
	}

	sample := history.EnergySample{
		DeviceID:   msg.DeviceID,
		PowerWatts: watts,
		RecordedAt: msg.ReceivedAt,
	}
	if err := s.energy.Append(ctx, sample); err != nil {
		s.logger.Error("failed to persist energy sample", "device_id", msg.DeviceID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.WriteEnergySample(msg.DeviceID, watts, msg.ReceivedAt)
	}
}

// numericAttribute returns the first present numeric value among keys.
func numericAttribute(attrs map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := attrs[key].(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}
