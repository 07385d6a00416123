package mqtt

import "fmt"

// Topic prefixes for the device bus.
//
// Device traffic uses the scheme: smarthome/{device_id}/{channel}
// where channel is one of status, control, sensor, energy. The hub's
// own lifecycle messages live under homehub/system.
const (
	// TopicPrefixDevice is the base for all device topics.
	TopicPrefixDevice = "smarthome"

	// TopicPrefixSystem is the base for hub lifecycle topics.
	TopicPrefixSystem = "homehub/system"
)

// Device channel names, the last topic segment.
const (
	ChannelStatus  = "status"
	ChannelControl = "control"
	ChannelSensor  = "sensor"
	ChannelEnergy  = "energy"
)

// Topics provides builders for device-bus MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	topics.DeviceControl("living_room_light")
//	// Returns: "smarthome/living_room_light/control"
type Topics struct{}

// DeviceStatus returns the topic where a device reports attribute changes.
//
// Example: smarthome/living_room_light/status
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, ChannelStatus)
}

// DeviceControl returns the topic the hub publishes commands to.
//
// Example: smarthome/living_room_light/control
func (Topics) DeviceControl(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, ChannelControl)
}

// DeviceSensor returns the topic where a device publishes sensor readings.
//
// Example: smarthome/hallway_motion/sensor
func (Topics) DeviceSensor(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, ChannelSensor)
}

// DeviceEnergy returns the topic where a device publishes power samples.
//
// Example: smarthome/bedroom_ac/energy
func (Topics) DeviceEnergy(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevice, deviceID, ChannelEnergy)
}

// SystemStatus returns the hub lifecycle status topic (LWT target).
//
// Example: homehub/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// Wildcard patterns for subscriptions.

// AllStatus returns a pattern matching status reports from every device.
//
// Pattern: smarthome/+/status
func (Topics) AllStatus() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixDevice, ChannelStatus)
}

// AllSensor returns a pattern matching sensor readings from every device.
//
// Pattern: smarthome/+/sensor
func (Topics) AllSensor() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixDevice, ChannelSensor)
}

// AllEnergy returns a pattern matching energy samples from every device.
//
// Pattern: smarthome/+/energy
func (Topics) AllEnergy() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixDevice, ChannelEnergy)
}
