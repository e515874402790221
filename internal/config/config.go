// Package config provides persistent configuration for adhan-clock.
//
// Configuration is stored as JSON at ~/.config/adhan-clock/config.json
// (XDG-compliant). The merge priority is: CLI flags > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smokyabdulrahman/adhan-clock/internal/alert"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

const (
	configDirName  = "adhan-clock"
	configFileName = "config.json"
)

// DefaultMethod is ISNA; DefaultSchool is Hanafi. Both match the
// original kiosk deployment.
const (
	DefaultMethod = 2
	DefaultSchool = 1
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "state", "country",
	"latitude", "longitude",
	"method", "school",
	"timezone",
	"time_format",
	"cache_dir",
	"addr",
	"audio_adhan", "audio_fajr", "audio_player",
	"alert_fajr", "alert_dhuhr", "alert_asr", "alert_maghrib", "alert_isha",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	// Manual location override. When latitude/longitude are set the kiosk
	// skips geolocation entirely.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// Fallback named place used when geolocation fails.
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`

	Method     *int   `json:"method,omitempty"` // pointer so "not set" differs from 0
	School     *int   `json:"school,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
	TimeFormat string `json:"time_format,omitempty"` // "12h" or "24h"
	CacheDir   string `json:"cache_dir,omitempty"`

	// Kiosk HTTP server address, e.g. ":8080".
	Addr string `json:"addr,omitempty"`

	// Audio assets and player command for the adhan alert mode.
	AudioAdhan  string `json:"audio_adhan,omitempty"`
	AudioFajr   string `json:"audio_fajr,omitempty"`
	AudioPlayer string `json:"audio_player,omitempty"`

	// Per-prayer alert modes: "adhan", "notification", or "silent".
	AlertFajr    string `json:"alert_fajr,omitempty"`
	AlertDhuhr   string `json:"alert_dhuhr,omitempty"`
	AlertAsr     string `json:"alert_asr,omitempty"`
	AlertMaghrib string `json:"alert_maghrib,omitempty"`
	AlertIsha    string `json:"alert_isha,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := DefaultMethod
	school := DefaultSchool
	return Config{
		Method:     &method,
		School:     &school,
		TimeFormat: "24h",
		Addr:       ":8080",
		City:       "Queens",
		State:      "NY",
		Country:    "USA",
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "city":
		c.City = value
	case "state":
		c.State = value
	case "country":
		c.Country = value
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = v
	case "method":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid method %q: must be an integer", value)
		}
		if v < 0 || v > 23 {
			return fmt.Errorf("invalid method %q: must be between 0 and 23", value)
		}
		c.Method = &v
	case "school":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid school %q: must be an integer", value)
		}
		if v != 0 && v != 1 {
			return fmt.Errorf("invalid school %q: must be 0 (Standard) or 1 (Hanafi)", value)
		}
		c.School = &v
	case "timezone":
		c.Timezone = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "cache_dir":
		c.CacheDir = value
	case "addr":
		c.Addr = value
	case "audio_adhan":
		c.AudioAdhan = value
	case "audio_fajr":
		c.AudioFajr = value
	case "audio_player":
		c.AudioPlayer = value
	case "alert_fajr", "alert_dhuhr", "alert_asr", "alert_maghrib", "alert_isha":
		if _, ok := alert.ParseMode(value); !ok {
			return fmt.Errorf("invalid alert mode %q: must be adhan, notification, or silent", value)
		}
		switch key {
		case "alert_fajr":
			c.AlertFajr = value
		case "alert_dhuhr":
			c.AlertDhuhr = value
		case "alert_asr":
			c.AlertAsr = value
		case "alert_maghrib":
			c.AlertMaghrib = value
		case "alert_isha":
			c.AlertIsha = value
		}
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "state":
		return c.State, nil
	case "country":
		return c.Country, nil
	case "latitude":
		if c.Latitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "method":
		if c.Method == nil {
			return "", nil
		}
		return strconv.Itoa(*c.Method), nil
	case "school":
		if c.School == nil {
			return "", nil
		}
		return strconv.Itoa(*c.School), nil
	case "timezone":
		return c.Timezone, nil
	case "time_format":
		return c.TimeFormat, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "addr":
		return c.Addr, nil
	case "audio_adhan":
		return c.AudioAdhan, nil
	case "audio_fajr":
		return c.AudioFajr, nil
	case "audio_player":
		return c.AudioPlayer, nil
	case "alert_fajr":
		return c.AlertFajr, nil
	case "alert_dhuhr":
		return c.AlertDhuhr, nil
	case "alert_asr":
		return c.AlertAsr, nil
	case "alert_maghrib":
		return c.AlertMaghrib, nil
	case "alert_isha":
		return c.AlertIsha, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// AlertMode returns the configured alert mode for a prayer, defaulting to
// full adhan for unset or unknown names.
func (c *Config) AlertMode(prayer string) alert.Mode {
	var raw string
	switch prayer {
	case schedule.Fajr:
		raw = c.AlertFajr
	case schedule.Dhuhr:
		raw = c.AlertDhuhr
	case schedule.Asr:
		raw = c.AlertAsr
	case schedule.Maghrib:
		raw = c.AlertMaghrib
	case schedule.Isha:
		raw = c.AlertIsha
	}
	if mode, ok := alert.ParseMode(raw); ok {
		return mode
	}
	return alert.ModeAdhan
}

// MethodOrDefault returns the method value, falling back to the given default.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// SchoolOrDefault returns the school value, falling back to the given default.
func (c *Config) SchoolOrDefault(def int) int {
	if c.School != nil {
		return *c.School
	}
	return def
}
