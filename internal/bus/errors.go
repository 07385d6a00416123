package bus

import "errors"

// Domain errors for the bus gateway. Check with errors.Is().
var (
	// ErrBusUnavailable is returned when a command cannot be dispatched
	// because the broker connection is down. Device state is unchanged;
	// commands are never queued for later delivery.
	ErrBusUnavailable = errors.New("bus: broker unavailable")

	// ErrMalformedTopic is returned for topics outside the
	// smarthome/{device_id}/{channel} scheme.
	ErrMalformedTopic = errors.New("bus: malformed topic")

	// ErrMalformedPayload is returned for payloads that are not a JSON
	// object of attribute values.
	ErrMalformedPayload = errors.New("bus: malformed payload")
)
