package bus

import (
	"fmt"
	"strings"

	"github.com/wrenhall/homehub/internal/infrastructure/mqtt"
)

// ChannelKind identifies which device channel a message arrived on.
type ChannelKind string

// Device channels.
const (
	// ChannelStatus carries controllable-attribute changes reported by
	// the device itself (confirmations, manual switch presses).
	ChannelStatus ChannelKind = "status"

	// ChannelSensor carries sensor readings (motion, temperature).
	ChannelSensor ChannelKind = "sensor"

	// ChannelEnergy carries instantaneous power samples.
	ChannelEnergy ChannelKind = "energy"
)

// ParseTopic extracts the device id and channel from a device-bus topic.
//
// Topics follow smarthome/{device_id}/{channel}. Anything else,
// including the hub's own control channel, is rejected.
func ParseTopic(topic string) (deviceID string, kind ChannelKind, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != mqtt.TopicPrefixDevice {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	if parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q has empty device id", ErrMalformedTopic, topic)
	}

	switch parts[2] {
	case mqtt.ChannelStatus:
		kind = ChannelStatus
	case mqtt.ChannelSensor:
		kind = ChannelSensor
	case mqtt.ChannelEnergy:
		kind = ChannelEnergy
	default:
		return "", "", fmt.Errorf("%w: %q has unknown channel %q", ErrMalformedTopic, topic, parts[2])
	}

	return parts[1], kind, nil
}
