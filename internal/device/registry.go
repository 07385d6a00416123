package device

import (
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the authoritative in-memory store of device state.
//
// It is populated once at startup from the device definition list and
// never grows or shrinks during normal operation: unknown device ids in
// inbound messages are logged and dropped, never auto-registered.
//
// A single RWMutex guards all mutation. The device count and message
// rate of this system are low enough that a global lock is the simpler
// correct choice; it is held only for the in-memory update, never
// across a bus publish or a broadcast.
//
// All public methods are thread-safe. Returned devices are deep copies.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
	order   []string // registration order for List
	logger  Logger
}

// NewRegistry creates a registry from an ordered list of definitions.
//
// Each definition's initial state is validated against its type's
// capability schema; a violation fails construction rather than
// starting the hub with state the schema forbids.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		devices: make(map[string]*Device, len(defs)),
		order:   make([]string, 0, len(defs)),
		logger:  noopLogger{},
	}

	for _, def := range defs {
		dev, err := def.build()
		if err != nil {
			return nil, err
		}
		if _, exists := r.devices[dev.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDeviceExists, dev.ID)
		}
		r.devices[dev.ID] = dev
		r.order = append(r.order, dev.ID)
	}

	return r, nil
}

// SetLogger sets the logger for the registry.
// Safe to call concurrently with other registry operations.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Get retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) Get(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dev, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return dev.DeepCopy(), nil
}

// List returns all devices in registration order, optionally filtered
// by room. The room filter is case-insensitive and matches both
// "living_room" and "Living Room" spellings of the same label.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) List(roomFilter string) []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := normaliseRoom(roomFilter)
	devices := make([]Device, 0, len(r.order))
	for _, id := range r.order {
		dev := r.devices[id]
		if want != "" && normaliseRoom(dev.Room) != want {
			continue
		}
		devices = append(devices, *dev.DeepCopy())
	}
	return devices
}

// ApplyDelta applies a partial attribute->value mapping to a device.
//
// This is the only state mutation path. The delta is re-validated
// against the capability schema even though callers are expected to
// pre-validate; on success every attribute is applied, LastUpdated is
// set, and connectivity flips to online — atomically under the lock.
// On any validation failure nothing is applied.
func (r *Registry) ApplyDelta(id string, delta map[string]any, at time.Time) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	// Validate the whole delta before touching state: no partial application.
	if err := dev.Schema.CheckDelta(delta); err != nil {
		return nil, err
	}

	if dev.State == nil {
		dev.State = make(State, len(delta))
	}
	for name, value := range delta {
		dev.State[name] = value
	}
	ts := at.UTC()
	dev.LastUpdated = &ts
	dev.Connectivity = ConnectivityOnline

	r.logger.Debug("device state updated", "id", id, "attributes", len(delta))
	return dev.DeepCopy(), nil
}

// MarkOnline records message recency for a device without changing any
// attribute. Used for inbound messages that carry no controllable
// attributes (sensor readings, energy samples).
func (r *Registry) MarkOnline(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, ok := r.devices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}

	ts := at.UTC()
	dev.LastUpdated = &ts
	dev.Connectivity = ConnectivityOnline
	return nil
}

// MarkStale flips devices that have not reported within the given
// duration to offline. It returns the ids whose connectivity changed.
// Intended to run periodically from a background ticker.
func (r *Registry) MarkStale(olderThan time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.UTC().Add(-olderThan)
	var changed []string
	for _, id := range r.order {
		dev := r.devices[id]
		if dev.Connectivity != ConnectivityOnline {
			continue
		}
		if dev.LastUpdated == nil || dev.LastUpdated.Before(cutoff) {
			dev.Connectivity = ConnectivityOffline
			changed = append(changed, id)
		}
	}

	if len(changed) > 0 {
		r.logger.Info("devices marked offline", "count", len(changed))
	}
	return changed
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
