// Package mqtt provides MQTT client connectivity for the hub.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Degraded start when the broker is down at boot
//
// # Architecture
//
// MQTT is the device bus: every physical device reports state and
// receives commands over broker topics, decoupling the hub from device
// firmware specifics.
//
//	Hub ↔ MQTT Broker ↔ Devices
//
// Device topics follow smarthome/{device_id}/{channel} where channel is
// status, control, sensor, or energy. The hub's own lifecycle status is
// retained at homehub/system/status.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if errors.Is(err, mqtt.ErrBrokerUnreachable) {
//	    // degraded start: client still usable, retries continue
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllStatus(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	topic := mqtt.Topics{}.DeviceControl("living_room_light")
//	client.Publish(topic, []byte(`{"power":"on"}`), 1, false)
package mqtt
