// Package config handles configuration loading and validation for almanac.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/styles"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
)

// Config holds the application configuration.
//
// Values are resolved in order: defaults, the YAML file, then ALMANAC_*
// environment variables.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Collection CollectionConfig `yaml:"collection"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	UI         UIConfig         `yaml:"ui"`
	DataDir    string           `yaml:"-"` // set by caller, not from config file
}

// StorageConfig selects where entities are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"ALMANAC_STORAGE_BACKEND"` // json, sqlite or diskv
	Path    string `yaml:"path"    env:"ALMANAC_STORAGE_PATH"`    // optional; derived from the data dir when empty
}

// CollectionConfig describes the collection the CLI operates on.
type CollectionConfig struct {
	Name   string        `yaml:"name"   env:"ALMANAC_COLLECTION"`
	Mode   string        `yaml:"mode"   env:"ALMANAC_MODE"` // multi or daily
	Limits entity.Limits `yaml:"limits"`
}

// AnalyticsConfig holds defaults for the stats commands.
type AnalyticsConfig struct {
	WindowDays int    `yaml:"window_days" env:"ALMANAC_WINDOW_DAYS"`
	Timezone   string `yaml:"timezone"    env:"ALMANAC_TIMEZONE"` // IANA name; empty uses the local zone
}

// UIConfig holds terminal rendering options.
type UIConfig struct {
	Theme string `yaml:"theme" env:"ALMANAC_THEME"` // one of styles.ThemeNames()
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendJSON,
		},
		Collection: CollectionConfig{
			Name:   "journal",
			Mode:   "multi",
			Limits: entity.DefaultLimits(),
		},
		Analytics: AnalyticsConfig{
			WindowDays: 30,
		},
		UI: UIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, defaults are used. Environment
// variables override both.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	// Re-set dataDir since Unmarshal may have cleared it
	cfg.DataDir = dataDir

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Collection.Name == "" {
		c.Collection.Name = defaults.Collection.Name
	}
	if c.Collection.Mode == "" {
		c.Collection.Mode = defaults.Collection.Mode
	}
	if c.Analytics.WindowDays == 0 {
		c.Analytics.WindowDays = defaults.Analytics.WindowDays
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// StorePath returns where the configured backend keeps the collection. The
// SQLite database is shared by every collection; the JSON and diskv backends
// use one file or directory per collection.
func (c *Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		return filepath.Join(c.DataDir, "almanac.db")
	case BackendDiskv:
		return filepath.Join(c.DataDir, "diskv", c.Collection.Name)
	default:
		return filepath.Join(c.DataDir, "collections", c.Collection.Name+".json")
	}
}

// Location returns the zone used for calendar days and analytics.
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Analytics.Timezone)
}
