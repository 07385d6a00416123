package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteEnergySample mirrors a device power sample to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Dropped samples are acceptable here — SQLite holds the authoritative
// history.
func (c *Client) WriteEnergySample(deviceID string, powerWatts float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"energy",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"power_watts": powerWatts,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceMetric writes a single device measurement.
//
// Example:
//
//	client.WriteDeviceMetric("bedroom_ac", "temperature_c", 21.5)
func (c *Client) WriteDeviceMetric(deviceID string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_metrics",
		map[string]string{
			"device_id":   deviceID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
