package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// APIConfig holds the HTTP listener settings
type APIConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// MetricsConfig holds the sampler settings. Durations are plain seconds in
// the config file, matching the flag values.
type MetricsConfig struct {
	CollectionInterval int    `json:"collection_interval"` // seconds between samples
	CPUWindow          int    `json:"cpu_window"`          // seconds the CPU percent query blocks; 0 = instantaneous
	MaxSamples         int    `json:"max_samples"`
	DiskPath           string `json:"disk_path"` // mount point measured for disk usage
}

// LoggingConfig holds the log tailer settings
type LoggingConfig struct {
	Directories  []string `json:"directories"`
	Extension    string   `json:"extension"` // only files with this suffix are tailed
	MaxEntries   int      `json:"max_entries"`
	PollInterval int      `json:"poll_interval"` // seconds between sweep cycles
}

// StreamConfig holds the websocket streaming settings
type StreamConfig struct {
	MaxClients int `json:"max_clients"`
}

// Config is the full set of recognized options. It is built once at startup
// and never reloaded.
type Config struct {
	API     APIConfig     `json:"api"`
	Metrics MetricsConfig `json:"metrics"`
	Logging LoggingConfig `json:"logging"`
	Stream  StreamConfig  `json:"stream"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		API:     APIConfig{Host: "0.0.0.0", Port: 5000},
		Metrics: MetricsConfig{CollectionInterval: 10, CPUWindow: 1, MaxSamples: 1000, DiskPath: "/"},
		Logging: LoggingConfig{Directories: []string{"logs"}, Extension: ".log", MaxEntries: 200, PollInterval: 2},
		Stream:  StreamConfig{MaxClients: 20},
	}
}

// LoadConfig reads a JSON config file over the defaults. A missing file is
// not an error: the defaults are returned unchanged. A present but broken
// file is an error so a typo does not silently run with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects contract-breaking values. The caller treats any error
// here as fatal: refusing to start beats silently substituting defaults.
func (c Config) Validate() error {
	if c.Metrics.CollectionInterval <= 0 {
		return fmt.Errorf("metrics.collection_interval must be positive, got %d", c.Metrics.CollectionInterval)
	}
	if c.Metrics.CPUWindow < 0 {
		return fmt.Errorf("metrics.cpu_window must not be negative, got %d", c.Metrics.CPUWindow)
	}
	if c.Metrics.CPUWindow > c.Metrics.CollectionInterval {
		return fmt.Errorf("metrics.cpu_window (%d) must not exceed metrics.collection_interval (%d)",
			c.Metrics.CPUWindow, c.Metrics.CollectionInterval)
	}
	if c.Metrics.MaxSamples <= 0 {
		return fmt.Errorf("metrics.max_samples must be positive, got %d", c.Metrics.MaxSamples)
	}
	if c.Metrics.DiskPath == "" {
		return fmt.Errorf("metrics.disk_path must not be empty")
	}
	if len(c.Logging.Directories) == 0 {
		return fmt.Errorf("logging.directories must name at least one directory")
	}
	if !strings.HasPrefix(c.Logging.Extension, ".") {
		return fmt.Errorf("logging.extension must start with a dot, got %q", c.Logging.Extension)
	}
	if c.Logging.MaxEntries <= 0 {
		return fmt.Errorf("logging.max_entries must be positive, got %d", c.Logging.MaxEntries)
	}
	if c.Logging.PollInterval <= 0 {
		return fmt.Errorf("logging.poll_interval must be positive, got %d", c.Logging.PollInterval)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be in 1..65535, got %d", c.API.Port)
	}
	if c.Stream.MaxClients <= 0 {
		return fmt.Errorf("stream.max_clients must be positive, got %d", c.Stream.MaxClients)
	}
	return nil
}

// SampleInterval returns the sampling interval as a duration
func (c Config) SampleInterval() time.Duration {
	return time.Duration(c.Metrics.CollectionInterval) * time.Second
}

// CPUWindow returns the CPU percent measurement window as a duration
func (c Config) CPUWindow() time.Duration {
	return time.Duration(c.Metrics.CPUWindow) * time.Second
}

// PollInterval returns the tailer sweep interval as a duration
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Logging.PollInterval) * time.Second
}

// ListenAddr returns the host:port the HTTP server binds to
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
