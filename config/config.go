// Package config loads the settings of the fxg command.
//
// Settings come, by increasing priority, from the defaults, a YAML file, the
// environment (a .env file in the working directory included) and the command
// line flags, applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables of the configuration.
const (
	EnvAppID    = "OXR_APP_ID"
	EnvConfig   = "FXG_CONFIG"
	EnvCurrency = "FXG_CURRENCY"
	EnvDatabase = "FXG_DATABASE"
	EnvLogLevel = "FXG_LOG_LEVEL"
)

// Config is the complete fxg configuration.
type Config struct {
	Currency string `yaml:"currency"`  // home currency
	Broker   string `yaml:"broker"`    // default broker export format
	Database string `yaml:"database"`  // rate store path
	Lookback int    `yaml:"lookback"`  // days a rate is carried forward
	LogLevel string `yaml:"log_level"` // debug, info, warn or error
	OXR      OXR    `yaml:"oxr"`
}

// OXR configures the openexchangerates.org client.
type OXR struct {
	AppID             string  `yaml:"app_id"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	CacheDir          string  `yaml:"cache_dir,omitempty"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Currency: "JPY",
		Broker:   "firstrade",
		Database: "fxgains.db",
		Lookback: 10,
		LogLevel: "info",
		OXR: OXR{
			BaseURL:           "https://openexchangerates.org/api",
			RequestsPerSecond: 5,
			CacheDir:          filepath.Join(os.TempDir(), "fxgains"),
		},
	}
}

// DefaultPath returns the configuration file location: FXG_CONFIG if set,
// else config.yaml in the fxg directory of the user configuration directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fxg.yaml"
	}
	return filepath.Join(dir, "fxg", "config.yaml")
}

// Load returns the defaults overridden by the file at path, if it exists, then
// by the environment. A .env file in the working directory is loaded first,
// without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("cannot load .env file", "error", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("no config file", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAppID); ok {
		c.OXR.AppID = v
	}
	if v, ok := lookup(EnvCurrency); ok {
		c.Currency = v
	}
	if v, ok := lookup(EnvDatabase); ok {
		c.Database = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("FXG_LOOKBACK"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FXG_LOOKBACK %q: %w", v, err)
		}
		c.Lookback = n
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be a 3 letter code, got %q", c.Currency)
	}
	if c.Lookback < 0 {
		return fmt.Errorf("lookback must not be negative")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}
