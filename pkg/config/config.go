// Package config loads crudd service configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/getcrudd/crudd/pkg/record"
	"github.com/getcrudd/crudd/pkg/store"
)

// DefaultPort is the default API port.
const DefaultPort = 4280

// Config is the full service configuration.
type Config struct {
	// Port is the API listen port.
	Port int `yaml:"port"`

	// Store configures the persistence backend.
	Store store.Config `yaml:"store"`

	// Log configures operational logging.
	Log LogConfig `yaml:"log"`

	// Resources are the record collections to serve.
	Resources []record.Definition `yaml:"resources"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration: file-backed store, info-level
// text logs, no resources.
func Default() *Config {
	return &Config{
		Port:  DefaultPort,
		Store: store.DefaultConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFile reads a YAML configuration file, applying defaults for anything
// the file leaves unset.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = store.BackendFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	seen := make(map[string]bool, len(c.Resources))
	for _, def := range c.Resources {
		if err := def.Validate(); err != nil {
			return err
		}
		if seen[def.Name] {
			return fmt.Errorf("duplicate resource %q", def.Name)
		}
		seen[def.Name] = true
	}
	return nil
}
