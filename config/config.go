package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Backend struct {
		BaseURL string `yaml:"base_url" env:"POLIDEX_BASE_URL"`
	} `yaml:"backend"`
	UI struct {
		PageSize            int `yaml:"page_size" env:"POLIDEX_PAGE_SIZE"`
		PollIntervalSeconds int `yaml:"poll_interval_seconds" env:"POLIDEX_POLL_INTERVAL"`
	} `yaml:"ui"`
	Cache struct {
		StaleAfterSeconds int `yaml:"stale_after_seconds" env:"POLIDEX_STALE_AFTER"`
	} `yaml:"cache"`
}

// Dir returns the directory holding the config file and the session token.
// POLIDEX_CONFIG_DIR overrides the default ~/.polidex.
func Dir() string {
	if dir := os.Getenv("POLIDEX_CONFIG_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".polidex")
}

// TokenPath returns the file the session token is persisted to.
func TokenPath() string {
	return filepath.Join(Dir(), "token")
}

// Load loads configuration from file or returns defaults.
// Environment variables override both.
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(Dir(), "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(Dir(), "config.yaml"), data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Backend.BaseURL = "http://localhost:8000/api"
	cfg.UI.PageSize = 20
	cfg.UI.PollIntervalSeconds = 30
	cfg.Cache.StaleAfterSeconds = 30

	return cfg
}

// PollInterval returns the dashboard/usage refresh interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.UI.PollIntervalSeconds) * time.Second
}

// StaleAfter returns the cache staleness window.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Cache.StaleAfterSeconds) * time.Second
}
