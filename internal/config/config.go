// Package config loads sift's TOML user configuration from
// ~/.sift/config.toml. Everything has a default; a missing or broken
// config file never stops a session.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/asheshgoplani/sift/internal/logging"
)

var log = logging.ForComponent(logging.CompConfig)

// FileName is the TOML config file inside Dir().
const FileName = "config.toml"

// Config is the user-facing configuration.
type Config struct {
	// Theme sets the color scheme: "dark" (default), "light", or
	// "system" (resolved from the OS dark-mode setting).
	Theme string `toml:"theme"`

	// Workers overrides the scan worker pool size. 0 means one worker
	// per CPU.
	Workers int `toml:"workers"`

	// Delimiter splits items into fields for --nth matching. A single
	// space means any whitespace run.
	Delimiter string `toml:"delimiter"`

	// OutputOrder controls how multi-selected items are emitted:
	// "index" (ingestion order, default) or "selection".
	OutputOrder string `toml:"output_order"`

	// History configures persisted query history.
	History HistorySettings `toml:"history"`

	// Log configures debug logging.
	Log LogSettings `toml:"log"`
}

// HistorySettings configures the query history store.
type HistorySettings struct {
	// Enabled turns history persistence on (default: true).
	Enabled *bool `toml:"enabled"`

	// Limit is the number of queries retained (default: 500).
	Limit int `toml:"limit"`
}

// LogSettings configures debug logging.
type LogSettings struct {
	// Level is the minimum level written to debug.log.
	Level string `toml:"level"`

	// MaxSizeMB caps the log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// HistoryEnabled reports whether history persistence is on.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme:       "dark",
		Workers:     runtime.NumCPU(),
		Delimiter:   " ",
		OutputOrder: "index",
	}
}

// Dir returns sift's config directory, honoring SIFT_HOME for tests
// and sandboxed setups.
func Dir() string {
	if dir := os.Getenv("SIFT_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sift")
}

// Load reads the config file under Dir(), falling back to defaults
// when missing. A malformed file is an error: silently ignoring a typo
// the user just made is worse than telling them.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(Dir(), FileName))
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Theme != "dark" && c.Theme != "light" && c.Theme != "system" {
		c.Theme = "dark"
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.OutputOrder != "index" && c.OutputOrder != "selection" {
		c.OutputOrder = "index"
	}
}

// ResolveTheme maps the configured theme to "dark" or "light",
// consulting the OS for "system".
func ResolveTheme(theme string) string {
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		log.Debug("dark mode detection failed", "err", err)
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}
