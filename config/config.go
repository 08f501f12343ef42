// Package config loads and validates the riskgate application
// configuration: account identity, the throttle tier ladder, and the
// persistence backend. Files may be YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/riskgate/store"
	"github.com/rustyeddy/riskgate/throttle"
)

// Config represents the complete riskgate configuration.
type Config struct {
	Account  AccountConfig   `json:"account" yaml:"account"`
	Throttle throttle.Config `json:"throttle" yaml:"throttle"`
	Store    StoreConfig     `json:"store" yaml:"store"`
	Logging  LoggingConfig   `json:"logging" yaml:"logging"`
}

// AccountConfig identifies the account the throttle gates.
type AccountConfig struct {
	ID string `json:"id" yaml:"id"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Type is "file", "sqlite" or "redis".
	Type string `json:"type" yaml:"type"`

	// Path is the state file or SQLite database path.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	Redis store.RedisOptions `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Pretty bool   `json:"pretty" yaml:"pretty"` // console writer instead of JSON
}

// Default returns a configuration with the default tier ladder, a SQLite
// store next to the binary and info-level logging.
func Default() *Config {
	return &Config{
		Account:  AccountConfig{ID: "default"},
		Throttle: throttle.DefaultConfig(),
		Store: StoreConfig{
			Type: "sqlite",
			Path: "./riskgate.sqlite",
		},
		Logging: LoggingConfig{Level: "info", Pretty: true},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content) and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if err := c.Throttle.Validate(); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}

	switch c.Store.Type {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for %s stores", c.Store.Type)
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for redis stores")
		}
	case "", "none":
		// ephemeral throttle, nothing to check
	default:
		return fmt.Errorf("unknown store.type: %s", c.Store.Type)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level: %s", c.Logging.Level)
	}

	return nil
}
