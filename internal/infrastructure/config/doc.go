// Package config loads and validates hub configuration.
//
// Configuration comes from three layers, each overriding the last:
// hardcoded defaults, the YAML config file, and HOMEHUB_* environment
// variables. Load applies all three and validates the result before
// anything else starts.
package config
