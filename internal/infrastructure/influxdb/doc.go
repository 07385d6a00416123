// Package influxdb provides an optional time-series mirror for energy
// telemetry.
//
// When enabled, every energy sample processed by the hub is also
// written to InfluxDB for long-term dashboarding. Writes are batched
// and non-blocking; SQLite remains the source of truth for the
// summaries served by the API.
package influxdb
