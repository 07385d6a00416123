package device

import (
	"fmt"
	"time"
)

// Validator checks proposed control commands against a device's
// capability schema before dispatch.
//
// Every outbound command passes through here, whatever its origin.
// Commands derived from the language-understanding service are treated
// as untrusted and receive exactly the same checks as direct API calls.
type Validator struct {
	registry *Registry
}

// NewValidator creates a validator backed by the given registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks a proposed attribute mapping for a device and returns
// a normalised Command ready for dispatch.
//
// Failure kinds:
//   - ErrDeviceNotFound: the target device is not registered
//   - ErrReadOnlyDevice: the device type accepts no control commands
//   - ErrEmptyCommand: the mapping contains no attributes
//   - ErrUnknownAttribute: an attribute is outside the capability schema
//   - ErrOutOfRange: a value is outside its declared range or enum set
//
// Numeric values are range-checked inclusively and rejected when out of
// range, never clamped. Enum membership is exact and case-sensitive.
func (v *Validator) Validate(deviceID string, attrs map[string]any, origin Origin) (*Command, error) {
	dev, err := v.registry.Get(deviceID)
	if err != nil {
		return nil, err
	}

	if dev.Schema.ReadOnly {
		return nil, fmt.Errorf("%w: %s (%s)", ErrReadOnlyDevice, deviceID, dev.Type)
	}
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCommand, deviceID)
	}

	if err := dev.Schema.CheckDelta(attrs); err != nil {
		return nil, err
	}

	cmd := &Command{
		DeviceID:    deviceID,
		Attributes:  make(map[string]any, len(attrs)),
		Origin:      origin,
		SubmittedAt: time.Now().UTC(),
	}
	for name, value := range attrs {
		cmd.Attributes[name] = value
	}
	return cmd, nil
}
