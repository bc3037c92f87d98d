package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fieldbus-engine/pkg/logger"
	"fieldbus-engine/pkg/reconnect"
	"fieldbus-engine/pkg/transport"
)

// Config is the complete engine configuration. The engine core only
// ever sees the validated structs; file handling stays at this boundary.
type Config struct {
	Logging  logger.LoggingConfig `yaml:"logging"`
	MQTT     *MQTTConfig          `yaml:"mqtt,omitempty"`
	Channels []ChannelConfig      `yaml:"channels"`
}

// MQTTConfig contains broker settings for the MQTT point sink
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	RetryDelay  int    `yaml:"retry_delay"` // milliseconds between connection retries
}

// ReconnectConfig configures a channel's backoff behavior.
// Delays are in milliseconds.
type ReconnectConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	InitialDelay int     `yaml:"initial_delay"`
	MaxDelay     int     `yaml:"max_delay"`
	Multiplier   float64 `yaml:"multiplier"`
	Jitter       bool    `yaml:"jitter"`
}

// Policy converts the yaml form into a reconnect policy
func (r ReconnectConfig) Policy() reconnect.Policy {
	return reconnect.Policy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: time.Duration(r.InitialDelay) * time.Millisecond,
		MaxDelay:     time.Duration(r.MaxDelay) * time.Millisecond,
		Multiplier:   r.Multiplier,
		Jitter:       r.Jitter,
	}
}

// ChannelConfig describes one polling channel: its link, its exchange
// parameters and its point table. Immutable for the channel's lifetime.
type ChannelConfig struct {
	ID             string                  `yaml:"id"`
	Mode           string                  `yaml:"mode"`              // "tcp" or "rtu" framing
	Address        string                  `yaml:"address,omitempty"` // host:port for TCP links
	Serial         *transport.SerialConfig `yaml:"serial,omitempty"`  // serial line for RTU links
	UnitID         uint8                   `yaml:"unit_id"`
	PollInterval   int                     `yaml:"poll_interval"`   // milliseconds
	RequestTimeout int                     `yaml:"request_timeout"` // milliseconds
	MaxRetries     int                     `yaml:"max_retries"`
	Reconnect      ReconnectConfig         `yaml:"reconnect"`
	Points         []Point                 `yaml:"points"`
}

// PollIntervalDuration returns the poll interval as a duration
func (c *ChannelConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// RequestTimeoutDuration returns the request timeout as a duration
func (c *ChannelConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Millisecond
}

// LoadConfig loads and validates configuration from the given path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read configuration file %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadConfigFromString loads configuration from a YAML string (for testing)
func LoadConfigFromString(yamlContent string) (*Config, error) {
	return parse([]byte(yamlContent), "<inline>")
}

func parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration from %s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", source, err)
	}
	return &cfg, nil
}

// Validate checks the configuration and normalizes defaulted fields
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("no channels are defined")
	}

	if c.MQTT != nil {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is not specified")
		}
		if c.MQTT.Port <= 0 {
			return fmt.Errorf("mqtt.port must be positive")
		}
	}

	seen := make(map[string]bool)
	for i := range c.Channels {
		ch := &c.Channels[i]
		if err := ch.validate(); err != nil {
			return err
		}
		if seen[ch.ID] {
			return fmt.Errorf("duplicate channel id %q", ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}

func (c *ChannelConfig) validate() error {
	if c.ID == "" {
		return fmt.Errorf("channel has no id")
	}
	if c.Mode != "tcp" && c.Mode != "rtu" {
		return fmt.Errorf("channel %s: mode must be \"tcp\" or \"rtu\", got %q", c.ID, c.Mode)
	}
	if c.Address == "" && c.Serial == nil {
		return fmt.Errorf("channel %s: either address or serial must be specified", c.ID)
	}
	if c.Address != "" && c.Serial != nil {
		return fmt.Errorf("channel %s: address and serial are mutually exclusive", c.ID)
	}
	if c.Serial != nil && c.Serial.Device == "" {
		return fmt.Errorf("channel %s: serial.device is not specified", c.ID)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("channel %s: poll_interval must be positive", c.ID)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("channel %s: request_timeout must be positive", c.ID)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("channel %s: max_retries must be non-negative", c.ID)
	}
	if len(c.Points) == 0 {
		return fmt.Errorf("channel %s: no points are defined", c.ID)
	}

	pointIDs := make(map[uint32]bool)
	for i := range c.Points {
		p := &c.Points[i]
		p.normalize()
		if !p.Type.IsValid() {
			return fmt.Errorf("channel %s: point %d has unknown type %q", c.ID, p.ID, p.Type)
		}
		if !p.Type.IsBit() && p.Space != SpaceHolding && p.Space != SpaceInput {
			return fmt.Errorf("channel %s: point %d has unknown space %q", c.ID, p.ID, p.Space)
		}
		if p.Access != AccessRead && p.Access != AccessWrite && p.Access != AccessReadWrite {
			return fmt.Errorf("channel %s: point %d has unknown access mode %q", c.ID, p.ID, p.Access)
		}
		if p.Access.CanWrite() && (p.Type == TypeDiscrete || p.Space == SpaceInput) {
			return fmt.Errorf("channel %s: point %d is writable but its space is read-only", c.ID, p.ID)
		}
		if pointIDs[p.ID] {
			return fmt.Errorf("channel %s: duplicate point id %d", c.ID, p.ID)
		}
		pointIDs[p.ID] = true
	}
	return nil
}
