// Package config provides engine configuration loading.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the engine configuration.
type Config struct {
	// Workers is the backend parallelism degree. Tasks with no dependency
	// relation may run on different workers concurrently; tasks in a
	// dependency chain never do. Zero means runtime.NumCPU().
	Workers int

	// HighWatermark is the advisory outstanding-task threshold. Crossing it
	// logs a warning and emits a telemetry event; submission never blocks.
	// Zero disables the warning.
	HighWatermark int

	// LogLevel is the minimum console log level (debug, info, warn, error).
	LogLevel string

	// SampleInterval is how often the monitor samples engine stats.
	// Zero disables the monitor.
	SampleInterval time.Duration

	// ShutdownTimeout bounds the drain performed by Close.
	ShutdownTimeout time.Duration

	// Telemetry configures event export.
	Telemetry TelemetryConfig
}

// TelemetryConfig selects the telemetry exporter.
type TelemetryConfig struct {
	// Protocol is one of "noop", "file", "http". Empty means noop.
	Protocol string

	// Endpoint is a file path or HTTP URL, depending on Protocol.
	Endpoint string
}

// tomlConfig is the TOML representation.
type tomlConfig struct {
	Workers         int    `toml:"workers"`
	HighWatermark   int    `toml:"high_watermark"`
	LogLevel        string `toml:"log_level"`
	SampleInterval  string `toml:"sample_interval"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Telemetry       struct {
		Protocol string `toml:"protocol"`
		Endpoint string `toml:"endpoint"`
	} `toml:"telemetry"`
}

// Default returns configuration with sensible defaults.
func Default() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		HighWatermark:   4096,
		LogLevel:        "info",
		SampleInterval:  0,
		ShutdownTimeout: 30 * time.Second,
		Telemetry:       TelemetryConfig{Protocol: "noop"},
	}
}

// LoadFile loads a configuration from a TOML file.
func LoadFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(content))
}

// Parse parses a configuration from TOML content. Fields left unset keep
// their defaults.
func Parse(content string) (Config, error) {
	var raw tomlConfig
	if _, err := toml.Decode(content, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := Default()
	if raw.Workers != 0 {
		cfg.Workers = raw.Workers
	}
	if raw.HighWatermark != 0 {
		cfg.HighWatermark = raw.HighWatermark
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.SampleInterval != "" {
		d, err := time.ParseDuration(raw.SampleInterval)
		if err != nil {
			return Config{}, fmt.Errorf("invalid sample_interval: %w", err)
		}
		cfg.SampleInterval = d
	}
	if raw.ShutdownTimeout != "" {
		d, err := time.ParseDuration(raw.ShutdownTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if raw.Telemetry.Protocol != "" {
		cfg.Telemetry.Protocol = raw.Telemetry.Protocol
	}
	cfg.Telemetry.Endpoint = raw.Telemetry.Endpoint

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.HighWatermark < 0 {
		return fmt.Errorf("high_watermark must be >= 0, got %d", c.HighWatermark)
	}
	switch c.Telemetry.Protocol {
	case "", "noop", "file", "http":
	default:
		return fmt.Errorf("unknown telemetry protocol: %s", c.Telemetry.Protocol)
	}
	if (c.Telemetry.Protocol == "file" || c.Telemetry.Protocol == "http") && c.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry protocol %s requires an endpoint", c.Telemetry.Protocol)
	}
	return nil
}
