// Package config loads the adpulse configuration from a YAML file,
// a local .env file, and environment variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the adpulse dashboard.
type Config struct {
	Backend Backend `yaml:"backend"`
	Storage Storage `yaml:"storage"`
	UI      UI      `yaml:"ui"`
	Sync    Sync    `yaml:"sync"`
	Logging Logging `yaml:"logging"`
}

// Backend holds the analytics backend endpoint configuration.
type Backend struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// Storage holds the local history database path.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// UI controls timers on the rendered surface.
type UI struct {
	RotationSecs    int `yaml:"rotation_secs"`
	AutoRefreshSecs int `yaml:"auto_refresh_secs"` // 0 disables
}

// RotationInterval returns the hero rotation interval.
func (u UI) RotationInterval() time.Duration {
	return time.Duration(u.RotationSecs) * time.Second
}

// AutoRefresh returns the periodic refresh interval, 0 when disabled.
func (u UI) AutoRefresh() time.Duration {
	return time.Duration(u.AutoRefreshSecs) * time.Second
}

// Sync configures the manual refresh control.
type Sync struct {
	DateRange string `yaml:"date_range"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, fills in
// defaults, and applies .env / environment variable overrides. A
// missing file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, err
	}

	// The backend configures itself via .env; honour the same file.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Backend.TimeoutSecs <= 0 {
		cfg.Backend.TimeoutSecs = 90
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "adpulse.db"
	}
	if cfg.UI.RotationSecs <= 0 {
		cfg.UI.RotationSecs = 6
	}
	if cfg.Sync.DateRange == "" {
		cfg.Sync.DateRange = "last_7d"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = "adpulse.log"
	}
}

// applyEnvOverrides checks well-known environment variables and
// overrides the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ADPULSE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("SYNC_DATE_RANGE"); v != "" {
		cfg.Sync.DateRange = v
	}
	if v := os.Getenv("ROTATION_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.RotationSecs = n
		}
	}
	if v := os.Getenv("AUTO_REFRESH_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.AutoRefreshSecs = n
		}
	}
}
