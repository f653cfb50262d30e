// Package config reads and writes the host configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/host"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// HostConfig is what the host reports about itself to plugins
type HostConfig struct {
	Name    string `json:"name,omitempty"`
	Vendor  string `json:"vendor,omitempty"`
	Version string `json:"version,omitempty"`
}

// AudioConfig sets up processing
type AudioConfig struct {
	SampleRate   float64 `json:"sampleRate,omitempty"`
	MaxBlockSize int32   `json:"maxBlockSize,omitempty"`
}

// EventConfig bounds the event queues
type EventConfig struct {
	OutboxCapacity int `json:"outboxCapacity,omitempty"`
	QueueCapacity  int `json:"queueCapacity,omitempty"`
	ParamCapacity  int `json:"paramCapacity,omitempty"` // parameter ids per block
}

// LogConfig selects the logger
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"` // console or json
	File   string `json:"file,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Host   HostConfig  `json:"host,omitempty"`
	Audio  AudioConfig `json:"audio,omitempty"`
	Events EventConfig `json:"events,omitempty"`
	Log    LogConfig   `json:"log,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host: HostConfig{
			Name:    "vst3host",
			Vendor:  "vst3host",
			Version: "1.0.0",
		},
		Audio: AudioConfig{
			SampleRate:   44100,
			MaxBlockSize: 8192,
		},
		Events: EventConfig{
			OutboxCapacity: event.DefaultOutboxCapacity,
			QueueCapacity:  event.DefaultQueueCapacity,
			ParamCapacity:  vst3.DefaultParameterChangesCapacity,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vst3host"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// HostOptions converts the config into plugin load options. Every plugin
// loaded with the same Options shares one host application.
func (c *Config) HostOptions() host.Options {
	app := c.Host
	return host.Options{
		SampleRate:     c.Audio.SampleRate,
		MaxBlockSize:   c.Audio.MaxBlockSize,
		OutboxCapacity: c.Events.OutboxCapacity,
		QueueCapacity:  c.Events.QueueCapacity,
		ParamCapacity:  c.Events.ParamCapacity,
		Application: host.NewSharedApplication(func() *host.Application {
			return &host.Application{Name: app.Name, Vendor: app.Vendor, Version: app.Version}
		}),
	}
}
