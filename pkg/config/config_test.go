package config

import (
	"strings"
	"testing"
	"time"
)

const validYAML = `
logging:
  level: info

mqtt:
  broker: localhost
  port: 1883
  client_id: fieldbus
  topic_prefix: fieldbus

channels:
  - id: meter_room
    mode: tcp
    address: 192.168.1.10:502
    unit_id: 1
    poll_interval: 1000
    request_timeout: 500
    max_retries: 2
    reconnect:
      max_attempts: 0
      initial_delay: 100
      max_delay: 5000
      multiplier: 2
      jitter: true
    points:
      - id: 1
        name: voltage
        address: 100
        type: uint16
        scale: 0.1
      - id: 2
        name: setpoint
        address: 200
        type: int16
        access: rw
      - id: 3
        name: pump_running
        address: 10
        type: coil
`

// TestLoadValidConfig tests parsing and normalization of a full config
func TestLoadValidConfig(t *testing.T) {
	cfg, err := LoadConfigFromString(validYAML)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.MQTT == nil || cfg.MQTT.Broker != "localhost" {
		t.Error("mqtt section not parsed")
	}
	if len(cfg.Channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(cfg.Channels))
	}

	ch := cfg.Channels[0]
	if ch.PollIntervalDuration() != time.Second {
		t.Errorf("poll interval %v", ch.PollIntervalDuration())
	}
	if ch.RequestTimeoutDuration() != 500*time.Millisecond {
		t.Errorf("request timeout %v", ch.RequestTimeoutDuration())
	}

	policy := ch.Reconnect.Policy()
	if policy.InitialDelay != 100*time.Millisecond || policy.MaxDelay != 5*time.Second {
		t.Errorf("reconnect policy %+v", policy)
	}

	// Defaulted fields after normalization
	p := ch.Points[0]
	if p.Access != AccessRead {
		t.Errorf("access not defaulted: %q", p.Access)
	}
	if p.Space != SpaceHolding {
		t.Errorf("space not defaulted: %q", p.Space)
	}
	if ch.Points[1].Scale != 1 {
		t.Errorf("scale not defaulted: %g", ch.Points[1].Scale)
	}
}

// TestValidateRejectsInvalid tests the validation failure paths
func TestValidateRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		errPart string
	}{
		{
			"unknown mode",
			func(y string) string { return strings.Replace(y, "mode: tcp", "mode: ascii", 1) },
			"mode",
		},
		{
			"missing address",
			func(y string) string { return strings.Replace(y, "address: 192.168.1.10:502", "", 1) },
			"address or serial",
		},
		{
			"zero poll interval",
			func(y string) string { return strings.Replace(y, "poll_interval: 1000", "poll_interval: 0", 1) },
			"poll_interval",
		},
		{
			"unknown point type",
			func(y string) string { return strings.Replace(y, "type: uint16", "type: uint64", 1) },
			"type",
		},
		{
			"duplicate point id",
			func(y string) string { return strings.Replace(y, "id: 2", "id: 1", 1) },
			"duplicate point id",
		},
		{
			"negative retries",
			func(y string) string { return strings.Replace(y, "max_retries: 2", "max_retries: -1", 1) },
			"max_retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromString(tt.mutate(validYAML))
			if err == nil {
				t.Fatal("invalid config accepted")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

// TestValidateRejectsWritableReadOnlySpace tests that input-space and
// discrete points cannot be marked writable.
func TestValidateRejectsWritableReadOnlySpace(t *testing.T) {
	yaml := strings.Replace(validYAML,
		"type: int16\n        access: rw",
		"type: int16\n        space: input\n        access: rw", 1)

	_, err := LoadConfigFromString(yaml)
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Errorf("expected read-only space rejection, got %v", err)
	}
}

// TestLoadConfigMissingFile tests the file-not-found path
func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestValidateRejectsEmptyChannels tests that a channel-less config fails
func TestValidateRejectsEmptyChannels(t *testing.T) {
	if _, err := LoadConfigFromString("logging:\n  level: info\n"); err == nil {
		t.Error("expected error for empty channel list")
	}
}
