// Package config provides configuration loading for the offline sync daemon.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backend names accepted in configuration.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the daemon configuration.
type Config struct {
	ListenAddr  string        `yaml:"listen_addr"`
	UpstreamURL string        `yaml:"upstream_url"`
	LogLevel    string        `yaml:"log_level"`
	Storage     StorageConfig `yaml:"storage"`
	Queue       QueueConfig   `yaml:"queue"`
	Probe       ProbeConfig   `yaml:"probe"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // sqlite, redis or memory
	DataDir   string `yaml:"data_dir"`
	RedisAddr string `yaml:"redis_addr"`
	// EncryptionSecret, when set, enables AES-GCM encryption of the
	// persisted queue. The storage key is derived from it.
	EncryptionSecret string `yaml:"encryption_secret"`
}

// QueueConfig configures replay behavior.
type QueueConfig struct {
	MaxRetries int `yaml:"max_retries"`
}

// ProbeConfig configures connectivity detection.
type ProbeConfig struct {
	URL             string `yaml:"url"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// Interval returns the probe interval as a duration.
func (p ProbeConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ListenAddr:  "127.0.0.1:8790",
		UpstreamURL: "https://api.clinikore.com",
		LogLevel:    "info",
		Storage: StorageConfig{
			Backend: BackendSQLite,
			DataDir: "./data",
		},
		Queue: QueueConfig{
			MaxRetries: 3,
		},
		Probe: ProbeConfig{
			URL:             "https://connectivity-check.clinikore.com/ping",
			IntervalSeconds: 10,
		},
	}
}

// Load reads and parses a configuration file, applying defaults for
// omitted fields.
func Load(path string) (*Config, error) {
	cfg := Default()

	// Clean the path to prevent directory traversal
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis backend")
		}
	case BackendMemory:
		// nothing to validate
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.UpstreamURL == "" {
		return fmt.Errorf("upstream_url is required")
	}

	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue.max_retries must not be negative")
	}

	if c.Probe.IntervalSeconds <= 0 {
		return fmt.Errorf("probe.interval_seconds must be positive")
	}

	return nil
}
