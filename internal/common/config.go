package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logs      LogsConfig      `toml:"logs"`
	Monitor   MonitorConfig   `toml:"monitor"`
	Logging   LoggingConfig   `toml:"logging"`
	WebSocket WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
	// MaxPortTries is how many successive ports to probe when the
	// configured port is already bound.
	MaxPortTries int `toml:"max_port_tries" validate:"min=1"`
}

// LogsConfig describes the watched directory. The directory is scanned
// non-recursively for *.log and *.gz files.
type LogsConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

type MonitorConfig struct {
	PollInterval string `toml:"poll_interval"` // e.g. "2s" - delay between reconciler ticks
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for log lines
}

// WebSocketConfig contains configuration for the WebSocket push channel
type WebSocketConfig struct {
	// Throttle intervals for high-frequency events. Map of event type to
	// duration string, e.g. {"file_content" = "500ms"}. Empty map means
	// no throttling; every detected change is delivered.
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5000,
			Host:         "0.0.0.0",
			MaxPortTries: 20,
		},
		Logs: LogsConfig{
			Dir: "/var/log/ansible",
		},
		Monitor: MonitorConfig{
			PollInterval: "2s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		WebSocket: WebSocketConfig{
			ThrottleIntervals: map[string]string{},
		},
	}
}

// PollInterval returns the parsed monitor poll interval, falling back
// to 2 seconds on an empty or unparseable value.
func (c *Config) PollInterval() time.Duration {
	if c.Monitor.PollInterval != "" {
		if d, err := time.ParseDuration(c.Monitor.PollInterval); err == nil && d > 0 {
			return d
		}
	}
	return 2 * time.Second
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Server configuration
	if port := os.Getenv("LOGVIEW_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LOGVIEW_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if tries := os.Getenv("LOGVIEW_MAX_PORT_TRIES"); tries != "" {
		if t, err := strconv.Atoi(tries); err == nil {
			config.Server.MaxPortTries = t
		}
	}

	// Watched directory
	if dir := os.Getenv("LOGVIEW_LOGS_DIR"); dir != "" {
		config.Logs.Dir = dir
	}

	// Monitor configuration
	if interval := os.Getenv("LOGVIEW_POLL_INTERVAL"); interval != "" {
		config.Monitor.PollInterval = interval
	}

	// Logging configuration
	if level := os.Getenv("LOGVIEW_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LOGVIEW_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Legacy variables honored for compatibility with existing
	// deployments of the original service.
	if dir := os.Getenv("ANSIBLE_LOGS_DIR"); dir != "" {
		config.Logs.Dir = dir
	}
	if port := os.Getenv("INITIAL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if tries := os.Getenv("MAX_PORT_TRIES"); tries != "" {
		if t, err := strconv.Atoi(tries); err == nil {
			config.Server.MaxPortTries = t
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string, dir string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if dir != "" {
		config.Logs.Dir = dir
	}
}
