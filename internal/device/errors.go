package device

import "errors"

// Domain errors for the device package.
//
// These are the validation error kinds reported to callers; they are
// expected client mistakes, never fatal, and can be checked with
// errors.Is():
//
//	if errors.Is(err, device.ErrOutOfRange) {
//	    // reject the command, registry state is unchanged
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when registering a device with an ID
	// that already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrUnknownAttribute is returned when a delta or command references
	// an attribute outside the device's capability schema.
	ErrUnknownAttribute = errors.New("device: unknown attribute")

	// ErrOutOfRange is returned when a value falls outside an attribute's
	// declared range or enum set. Values are rejected, not clamped.
	ErrOutOfRange = errors.New("device: value out of range")

	// ErrReadOnlyDevice is returned when a control command targets a
	// device type with no controllable attributes (sensors).
	ErrReadOnlyDevice = errors.New("device: read-only device")

	// ErrEmptyCommand is returned when a command carries no attributes.
	ErrEmptyCommand = errors.New("device: command has no attributes")

	// ErrInvalidDefinition is returned when a device definition from the
	// configuration source fails validation at startup.
	ErrInvalidDefinition = errors.New("device: invalid definition")
)
