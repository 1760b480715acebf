// Package config loads odash settings from an XDG TOML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"

	// MinRefreshIntervalSec bounds the TUI auto-refresh so it cannot hammer the API.
	MinRefreshIntervalSec = 10
)

// Config holds all odash configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// APIConfig holds the dashboard API settings.
type APIConfig struct {
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds interactive dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: 30,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 60,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			IntervalSec:  60,
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "odash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "odash")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are not applied here; read them through
// GetBaseURL and GetLogLevel so Save never persists them.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	return cfg, nil
}

// GetBaseURL returns the API base URL from env var or config, in that order.
func GetBaseURL(cfg Config) string {
	if v := os.Getenv("ODASH_API_URL"); v != "" {
		return v
	}
	return cfg.API.BaseURL
}

// GetLogLevel returns the log level from env var or config, in that order.
func GetLogLevel(cfg Config) string {
	if v := os.Getenv("ODASH_LOG_LEVEL"); v != "" {
		return v
	}
	return cfg.Log.Level
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	baseURL := GetBaseURL(c)
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q: must be an http(s) URL", baseURL))
	}
	if c.API.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout_sec %d: must be positive", c.API.TimeoutSec))
	}
	if c.TUI.RefreshIntervalSec < MinRefreshIntervalSec {
		errs = append(errs, fmt.Errorf("tui.refresh_interval_sec %d: minimum is %d", c.TUI.RefreshIntervalSec, MinRefreshIntervalSec))
	}
	if c.Daemon.IntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("daemon.interval_sec %d: must be positive", c.Daemon.IntervalSec))
	}
	if c.Daemon.EventsBuffer <= 0 {
		errs = append(errs, fmt.Errorf("daemon.events_buffer %d: must be positive", c.Daemon.EventsBuffer))
	}
	level := GetLogLevel(c)
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", level))
	}

	return errors.Join(errs...)
}

// Timeout returns the API timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// RefreshInterval returns the TUI auto-refresh interval, never below the minimum.
func (c Config) RefreshInterval() time.Duration {
	sec := c.TUI.RefreshIntervalSec
	if sec < MinRefreshIntervalSec {
		sec = MinRefreshIntervalSec
	}
	return time.Duration(sec) * time.Second
}

// PollInterval returns the daemon poll interval.
func (c Config) PollInterval() time.Duration {
	if c.Daemon.IntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.Daemon.IntervalSec) * time.Second
}
