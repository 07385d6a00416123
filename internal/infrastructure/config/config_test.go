package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "hub:\n  id: test-hub\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hub.ID != "test-hub" {
		t.Errorf("hub.id = %q, want test-hub", cfg.Hub.ID)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt port default = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port default = %d, want 8080", cfg.API.Port)
	}
	if cfg.Devices.StaleAfter != 300 {
		t.Errorf("stale_after default = %d, want 300", cfg.Devices.StaleAfter)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level default = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
hub:
  id: test-hub
mqtt:
  broker:
    host: broker.local
    port: 8883
    tls: true
devices:
  path: ./devices.yaml
  stale_after: 120
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" || cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("broker = %s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("tls not applied from file")
	}
	if cfg.Devices.StaleAfter != 120 {
		t.Errorf("stale_after = %d, want 120", cfg.Devices.StaleAfter)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("HOMEHUB_MQTT_HOST", "env-broker")
	t.Setenv("HOMEHUB_DATABASE_PATH", "/tmp/env.db")

	path := writeConfig(t, `
hub:
  id: test-hub
mqtt:
  broker:
    host: file-broker
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("mqtt host = %q, want env-broker", cfg.MQTT.Broker.Host)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("database path = %q, want /tmp/env.db", cfg.Database.Path)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid qos", "hub:\n  id: x\nmqtt:\n  qos: 5\n"},
		{"invalid api port", "hub:\n  id: x\napi:\n  port: 99999\n"},
		{"assist enabled without url", "hub:\n  id: x\nassist:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
