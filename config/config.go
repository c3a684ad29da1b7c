package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy decides what the gate does when no actuator was resolved.
type Policy string

const (
	PolicySuppress Policy = "suppress" // log and do nothing
	PolicyAttempt  Policy = "attempt"  // log, then forward to the fallback driver
)

// Fallback names the driver used under PolicyAttempt.
type Fallback string

const (
	FallbackNone         Fallback = "none"
	FallbackLaunchpadLED Fallback = "launchpad-led"
)

// ActuatorConfig selects and drives the actuator output port
type ActuatorConfig struct {
	Ports    []string `yaml:"ports"` // name fragments, highest priority first
	Channel  uint8    `yaml:"channel"`
	Note     uint8    `yaml:"note"`
	Velocity uint8    `yaml:"velocity"`
	Policy   Policy   `yaml:"policy"`
	Fallback Fallback `yaml:"fallback,omitempty"`
}

// WaveformConfig tunes the built-in effects
type WaveformConfig struct {
	Resolution     int           `yaml:"resolution"`
	ShapeThreshold time.Duration `yaml:"shapeThreshold"`
}

// InputConfig lists the input ports used for recording
type InputConfig struct {
	Ports []string `yaml:"ports"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastEffect   string        `yaml:"lastEffect,omitempty"`
	LastDuration time.Duration `yaml:"lastDuration,omitempty"`
	Palette      string        `yaml:"palette,omitempty"` // .gpl file, built-in plasma when empty
}

// Config is the main configuration structure
type Config struct {
	Actuator  ActuatorConfig           `yaml:"actuator"`
	Waveform  WaveformConfig           `yaml:"waveform"`
	Durations map[string]time.Duration `yaml:"durations,omitempty"`
	Input     InputConfig              `yaml:"input"`
	UI        UIConfig                 `yaml:"ui,omitempty"`
	Debug     bool                     `yaml:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Actuator: ActuatorConfig{
			Ports:    []string{"haptic", "vibe", "rumble"},
			Note:     60,
			Velocity: 127,
			Policy:   PolicySuppress,
			Fallback: FallbackNone,
		},
		Waveform: WaveformConfig{
			Resolution:     10,
			ShapeThreshold: 100 * time.Millisecond,
		},
		Durations: map[string]time.Duration{
			"slow":   1000 * time.Millisecond,
			"medium": 500 * time.Millisecond,
			"fast":   250 * time.Millisecond,
		},
		Input: InputConfig{
			Ports: []string{"launchpad", "keyboard"},
		},
		UI: UIConfig{
			LastEffect:   "heartbeat",
			LastDuration: 1000 * time.Millisecond,
		},
	}
}

// Validate checks values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Waveform.Resolution <= 0 {
		return fmt.Errorf("waveform.resolution must be positive, got %d", c.Waveform.Resolution)
	}
	if c.Waveform.ShapeThreshold < 0 {
		return fmt.Errorf("waveform.shapeThreshold must not be negative, got %v", c.Waveform.ShapeThreshold)
	}
	switch c.Actuator.Policy {
	case PolicySuppress, PolicyAttempt:
	default:
		return fmt.Errorf("unknown actuator.policy %q", c.Actuator.Policy)
	}
	switch c.Actuator.Fallback {
	case "", FallbackNone, FallbackLaunchpadLED:
	default:
		return fmt.Errorf("unknown actuator.fallback %q", c.Actuator.Fallback)
	}
	for name, d := range c.Durations {
		if d < 0 {
			return fmt.Errorf("duration %q must not be negative, got %v", name, d)
		}
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-haptics"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing files yield the defaults and
// missing keys keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating the directory if needed.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
