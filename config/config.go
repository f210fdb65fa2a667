// Package config loads the searchflow YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/smallnest/searchflow/log"
	"github.com/smallnest/searchflow/paging"
	"github.com/smallnest/searchflow/search"
	"github.com/smallnest/searchflow/store"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
)

var validate = validator.New()

// Config is the top-level configuration.
type Config struct {
	Endpoint          string         `yaml:"endpoint" validate:"required,url"`
	PageLimit         int            `yaml:"page_limit" validate:"oneof=10 20 50"`
	RequestsPerSecond float64        `yaml:"requests_per_second" validate:"gte=0"`
	HTTPTimeout       time.Duration  `yaml:"http_timeout" validate:"gte=0"`
	LogLevel          string         `yaml:"log_level"`
	Autoload          AutoloadConfig `yaml:"autoload"`
	Store             StoreConfig    `yaml:"store"`
}

// AutoloadConfig controls when scrolling requests the next page.
type AutoloadConfig struct {
	DistanceTrigger int `yaml:"distance_trigger" validate:"gte=0"`
}

// StoreConfig selects and configures the snapshot backend.
type StoreConfig struct {
	Backend      string `yaml:"backend" validate:"oneof=memory file redis sqlite postgres"`
	Path         string `yaml:"path" validate:"required_if=Backend sqlite"`
	Addr         string `yaml:"addr" validate:"required_if=Backend redis"`
	DSN          string `yaml:"dsn" validate:"required_if=Backend postgres"`
	Prefix       string `yaml:"prefix"`
	Session      string `yaml:"session" validate:"required"`
	MaxSnapshots int    `yaml:"max_snapshots" validate:"gte=0"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Endpoint:    "https://buddyschool.com",
		PageLimit:   search.DefaultPageLimit,
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "info",
		Autoload: AutoloadConfig{
			DistanceTrigger: paging.DefaultDistanceTrigger,
		},
		Store: StoreConfig{
			Backend:      BackendFile,
			Prefix:       "searchflow:",
			Session:      "default",
			MaxSnapshots: store.DefaultMaxSnapshots,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() log.LogLevel {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LogLevelInfo
	}
	return level
}
