// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads.
const EnvVar = "POSEBRIDGE_CONFIG"

// maxSocketPath is the usable length of sun_path.
const maxSocketPath = 107

// Config is the daemon configuration.
type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Engine  EngineConfig  `yaml:"engine"`
	Status  StatusConfig  `yaml:"status"`
	Logging LoggingConfig `yaml:"logging"`
}

// BridgeConfig configures the channels and the worker loop.
type BridgeConfig struct {
	// SocketDirectory holds one socket per channel.
	SocketDirectory string `yaml:"socket_directory"`

	// PrimaryName is the head pose channel. Default: HMDPipe
	PrimaryName string `yaml:"primary_name"`

	// SecondaryPrefix is suffixed with the tracker index to name each
	// body channel. Default: TrackPipe
	SecondaryPrefix string `yaml:"secondary_prefix"`

	// Trackers names the body points, in channel index order.
	Trackers []string `yaml:"trackers"`

	// IdleInterval is the wait after an iteration that decoded no head
	// pose. Default: 5ms
	IdleInterval time.Duration `yaml:"idle_interval"`

	// ConnectTimeout bounds each non-blocking accept. Default: 1ms
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// IOTimeout bounds each channel read and write. Default: 50ms
	IOTimeout time.Duration `yaml:"io_timeout"`

	// ReadBufferSize is the primary channel read size. Default: 1024
	ReadBufferSize int `yaml:"read_buffer_size"`

	// MaxLineLength is the longest accepted pose line. Default: 2048
	MaxLineLength int `yaml:"max_line_length"`

	// SocketBuffer is the kernel buffer requested per connection.
	// Default: 16384
	SocketBuffer int `yaml:"socket_buffer"`
}

// EngineConfig configures the built-in engine tick.
type EngineConfig struct {
	// Interval is the tick period. Default: 10ms
	Interval time.Duration `yaml:"interval"`
}

// StatusConfig configures the status socket.
type StatusConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SocketPath string `yaml:"socket_path"`
}

// LoggingConfig configures the daemon's log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is one of auto, text, json. auto selects text on a
	// terminal and json otherwise. Default: auto
	Format string `yaml:"format"`
}

// Default returns the configuration used beneath any loaded file.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			SocketDirectory: "${XDG_RUNTIME_DIR:-/tmp}/posebridge",
			PrimaryName:     "HMDPipe",
			SecondaryPrefix: "TrackPipe",
			Trackers:        []string{"waist", "left_foot", "right_foot"},
			IdleInterval:    5 * time.Millisecond,
			ConnectTimeout:  time.Millisecond,
			IOTimeout:       50 * time.Millisecond,
			ReadBufferSize:  1024,
			MaxLineLength:   2048,
			SocketBuffer:    16 * 1024,
		},
		Engine: EngineConfig{
			Interval: 10 * time.Millisecond,
		},
		Status: StatusConfig{
			Enabled:    true,
			SocketPath: "${XDG_RUNTIME_DIR:-/tmp}/posebridge/status.sock",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads the file named by POSEBRIDGE_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your posebridge.yaml, or use --config", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads the file at path over Default and expands variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.ExpandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ExpandVariables expands ${VAR} and ${VAR:-default} in path fields.
// LoadFile calls it; callers using Default directly call it themselves.
func (c *Config) ExpandVariables() {
	c.Bridge.SocketDirectory = expandVars(c.Bridge.SocketDirectory)
	c.Status.SocketPath = expandVars(c.Status.SocketPath)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"auto", "text", "json"}
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	bridge := c.Bridge
	if bridge.SocketDirectory == "" {
		errs = append(errs, errors.New("bridge.socket_directory is required"))
	}
	if err := validateChannelName("bridge.primary_name", bridge.PrimaryName); err != nil {
		errs = append(errs, err)
	}
	if err := validateChannelName("bridge.secondary_prefix", bridge.SecondaryPrefix); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(bridge.Trackers))
	for i, name := range bridge.Trackers {
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("bridge.trackers[%d] is empty", i))
		case seen[name]:
			errs = append(errs, fmt.Errorf("bridge.trackers[%d]: duplicate tracker %q", i, name))
		}
		seen[name] = true
	}
	if bridge.SocketDirectory != "" && bridge.SecondaryPrefix != "" {
		longest := fmt.Sprintf("%s%d.sock", bridge.SecondaryPrefix, max(len(bridge.Trackers)-1, 0))
		if path := filepath.Join(bridge.SocketDirectory, longest); len(path) > maxSocketPath {
			errs = append(errs, fmt.Errorf("bridge.socket_directory: socket path %s exceeds %d bytes", path, maxSocketPath))
		}
	}
	errs = appendPositive(errs, "bridge.idle_interval", bridge.IdleInterval)
	errs = appendPositive(errs, "bridge.connect_timeout", bridge.ConnectTimeout)
	errs = appendPositive(errs, "bridge.io_timeout", bridge.IOTimeout)
	if bridge.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("bridge.read_buffer_size must be positive, got %d", bridge.ReadBufferSize))
	}
	if bridge.MaxLineLength <= 0 {
		errs = append(errs, fmt.Errorf("bridge.max_line_length must be positive, got %d", bridge.MaxLineLength))
	}
	if bridge.SocketBuffer < 0 {
		errs = append(errs, fmt.Errorf("bridge.socket_buffer must not be negative, got %d", bridge.SocketBuffer))
	}

	errs = appendPositive(errs, "engine.interval", c.Engine.Interval)

	if c.Status.Enabled {
		switch {
		case c.Status.SocketPath == "":
			errs = append(errs, errors.New("status.socket_path is required when status.enabled is true"))
		case len(c.Status.SocketPath) > maxSocketPath:
			errs = append(errs, fmt.Errorf("status.socket_path exceeds %d bytes", maxSocketPath))
		}
	}

	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}

	return errors.Join(errs...)
}

func validateChannelName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%s %q must not contain path separators", field, name)
	}
	return nil
}

func appendPositive(errs []error, field string, value time.Duration) []error {
	if value <= 0 {
		return append(errs, fmt.Errorf("%s must be positive, got %v", field, value))
	}
	return errs
}

// EnsurePaths creates the socket directory and the status socket's
// parent directory.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Bridge.SocketDirectory}
	if c.Status.Enabled && c.Status.SocketPath != "" {
		paths = append(paths, filepath.Dir(c.Status.SocketPath))
	}
	for _, path := range paths {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
