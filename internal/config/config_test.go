package config

import (
	"path/filepath"
	"testing"

	"github.com/smokyabdulrahman/adhan-clock/internal/alert"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

func TestLoadFromMissingFileReturnsEmpty(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.City != "" || cfg.Method != nil {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{}
	mustSet := func(key, value string) {
		t.Helper()
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("Set(%s, %s): %v", key, value, err)
		}
	}
	mustSet("city", "Queens")
	mustSet("state", "NY")
	mustSet("country", "USA")
	mustSet("method", "2")
	mustSet("school", "1")
	mustSet("time_format", "12h")
	mustSet("alert_fajr", "notification")

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.City != "Queens" {
		t.Errorf("City = %q", loaded.City)
	}
	if loaded.Method == nil || *loaded.Method != 2 {
		t.Errorf("Method = %v", loaded.Method)
	}
	if loaded.AlertFajr != "notification" {
		t.Errorf("AlertFajr = %q", loaded.AlertFajr)
	}
}

func TestSetValidation(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"latitude", "91"},
		{"latitude", "abc"},
		{"longitude", "-181"},
		{"method", "24"},
		{"method", "x"},
		{"school", "2"},
		{"time_format", "24"},
		{"alert_dhuhr", "loud"},
		{"bogus_key", "x"},
	}
	for _, tt := range tests {
		cfg := &Config{}
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %s): expected error", tt.key, tt.value)
		}
	}
}

func TestGetUnsetValues(t *testing.T) {
	cfg := &Config{}
	for _, key := range ValidKeys {
		val, err := cfg.Get(key)
		if err != nil {
			t.Errorf("Get(%s): %v", key, err)
		}
		if val != "" {
			t.Errorf("Get(%s) = %q, want empty on fresh config", key, val)
		}
	}

	if _, err := cfg.Get("bogus"); err == nil {
		t.Error("Get(bogus): expected error")
	}
}

func TestAlertModeDefaultsToAdhan(t *testing.T) {
	cfg := &Config{}
	for _, name := range schedule.CanonicalNames {
		if got := cfg.AlertMode(name); got != alert.ModeAdhan {
			t.Errorf("AlertMode(%s) = %q, want adhan", name, got)
		}
	}
	if got := cfg.AlertMode("Sunrise"); got != alert.ModeAdhan {
		t.Errorf("AlertMode(Sunrise) = %q, want adhan", got)
	}
}

func TestAlertModePerPrayer(t *testing.T) {
	cfg := &Config{AlertFajr: "silent", AlertIsha: "notification"}

	if got := cfg.AlertMode(schedule.Fajr); got != alert.ModeSilent {
		t.Errorf("Fajr = %q", got)
	}
	if got := cfg.AlertMode(schedule.Isha); got != alert.ModeNotification {
		t.Errorf("Isha = %q", got)
	}
	if got := cfg.AlertMode(schedule.Dhuhr); got != alert.ModeAdhan {
		t.Errorf("Dhuhr = %q", got)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Method == nil || *d.Method != DefaultMethod {
		t.Errorf("Method = %v", d.Method)
	}
	if d.School == nil || *d.School != DefaultSchool {
		t.Errorf("School = %v", d.School)
	}
	if d.Addr != ":8080" {
		t.Errorf("Addr = %q", d.Addr)
	}
	if d.City != "Queens" || d.Country != "USA" {
		t.Errorf("fallback place = %s, %s", d.City, d.Country)
	}
}
