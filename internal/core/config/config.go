// Package config handles configuration loading and validation for briefly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Namespace     string           `yaml:"namespace"`
	RetentionDays int              `yaml:"retention_days"`
	Database      DatabaseConfig   `yaml:"database"`
	Session       SessionConfig    `yaml:"session"`
	Engagement    EngagementConfig `yaml:"engagement"`
	VIPSenders    []string         `yaml:"vip_senders"`
	MutedSenders  []string         `yaml:"muted_senders"`
	DataDir       string           `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the sqlite connection pool.
type DatabaseConfig struct {
	MaxOpenConns  int `yaml:"max_open_conns"`
	MaxIdleConns  int `yaml:"max_idle_conns"`
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// SessionConfig holds per-session tunables.
type SessionConfig struct {
	// LedgerSize bounds the undo ring for reversible external actions.
	LedgerSize int `yaml:"ledger_size"`

	// PersistQueue bounds the async persistence write queue.
	PersistQueue int `yaml:"persist_queue"`
}

// EngagementConfig controls the best-effort engagement profile signal.
type EngagementConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Namespace:     "briefing",
		RetentionDays: 30,
		Database: DatabaseConfig{
			MaxOpenConns:  1,
			MaxIdleConns:  1,
			BusyTimeoutMS: 5000,
		},
		Session: SessionConfig{
			LedgerSize:   32,
			PersistQueue: 256,
		},
		Engagement: EngagementConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Namespace == "" {
		c.Namespace = defaults.Namespace
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = defaults.RetentionDays
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeoutMS == 0 {
		c.Database.BusyTimeoutMS = defaults.Database.BusyTimeoutMS
	}
	if c.Session.LedgerSize == 0 {
		c.Session.LedgerSize = defaults.Session.LedgerSize
	}
	if c.Session.PersistQueue == 0 {
		c.Session.PersistQueue = defaults.Session.PersistQueue
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Namespace == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	// The namespace is joined to the user id with a colon in record keys.
	if strings.Contains(c.Namespace, ":") {
		return fmt.Errorf("namespace %q cannot contain ':'", c.Namespace)
	}

	if c.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be at least 1")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeoutMS < 0 {
		return fmt.Errorf("database.busy_timeout_ms cannot be negative")
	}

	if c.Session.LedgerSize < 1 {
		return fmt.Errorf("session.ledger_size must be at least 1")
	}
	if c.Session.PersistQueue < 1 {
		return fmt.Errorf("session.persist_queue must be at least 1")
	}

	return nil
}

// DatabaseDir returns the directory holding the sqlite database.
func (c *Config) DatabaseDir() string {
	return filepath.Join(c.DataDir, "db")
}
