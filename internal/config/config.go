package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/slyt3/Gyre/internal/journal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCapacity     = 1024
	DefaultQueueSize    = 4096
	DefaultDBPath       = "gyre.db"
	DefaultAddr         = ":9998"
	DefaultBackpressure = "drop"
	DefaultLogLevel     = "info"
)

// Config represents the gyre.yaml structure.
type Config struct {
	Buffer struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"buffer"`
	Journal struct {
		Path         string `yaml:"path"`
		QueueSize    int    `yaml:"queue_size"`
		Backpressure string `yaml:"backpressure"`
	} `yaml:"journal"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	LogLevel string `yaml:"log_level"`
}

// Default returns a config with every field set to its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path, fills defaults, applies GYRE_* environment overrides and
// validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Buffer.Capacity == 0 {
		c.Buffer.Capacity = DefaultCapacity
	}
	if c.Journal.Path == "" {
		c.Journal.Path = DefaultDBPath
	}
	if c.Journal.QueueSize == 0 {
		c.Journal.QueueSize = DefaultQueueSize
	}
	if c.Journal.Backpressure == "" {
		c.Journal.Backpressure = DefaultBackpressure
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GYRE_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GYRE_CAPACITY: %w", err)
		}
		c.Buffer.Capacity = n
	}
	if v := os.Getenv("GYRE_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GYRE_QUEUE_SIZE: %w", err)
		}
		c.Journal.QueueSize = n
	}
	if v := os.Getenv("GYRE_DB"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("GYRE_BACKPRESSURE"); v != "" {
		c.Journal.Backpressure = v
	}
	if v := os.Getenv("GYRE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GYRE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate rejects values the buffer or journal cannot run with.
func (c *Config) Validate() error {
	if c.Buffer.Capacity <= 0 {
		return fmt.Errorf("buffer.capacity must be positive, got %d", c.Buffer.Capacity)
	}
	if c.Journal.QueueSize <= 0 {
		return fmt.Errorf("journal.queue_size must be positive, got %d", c.Journal.QueueSize)
	}
	if _, err := journal.ParseBackpressure(c.Journal.Backpressure); err != nil {
		return fmt.Errorf("journal.backpressure: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "critical":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
