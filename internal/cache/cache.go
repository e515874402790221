// Package cache provides file-based persistence for the last successful
// schedule fetch (offline fallback), the detected location, and the
// midnight-rollover marker that keeps rollover idempotent across restarts.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smokyabdulrahman/adhan-clock/internal/api"
	"github.com/smokyabdulrahman/adhan-clock/internal/geo"
)

const (
	scheduleCacheFile = "schedule_%s.json" // keyed by hash
	geoCacheFile      = "geolocation.json"
	rolloverFile      = "rollover"
	geoTTL            = 24 * time.Hour
)

// Cache is rooted at a directory; each concern gets its own file.
type Cache struct {
	dir string
}

// ScheduleEntry stores a day's raw timings along with enough metadata to
// validate it and rebuild a schedule without touching the network.
type ScheduleEntry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   int          `json:"method"`
	School   int          `json:"school"`
	Location string       `json:"location"` // display label at fetch time
	Timings  api.Timings  `json:"timings"`
	DateInfo api.DateInfo `json:"date_info"`
	Meta     api.Meta     `json:"meta"`
}

// geoEntry stores a cached geolocation result with a timestamp.
type geoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/adhan-clock/.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "adhan-clock")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// scheduleKey builds a deterministic hash from the parameters that affect
// prayer times, so different locations/methods/schools get separate files.
func scheduleKey(date string, loc geo.Location, method, school int) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%s|%d|%d",
		date, loc.Latitude, loc.Longitude, loc.City, loc.State, loc.Country, method, school)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}

// LoadSchedule attempts to read a cached schedule for the given parameters.
// Returns nil if the cache is missing or for a different calendar date.
func (c *Cache) LoadSchedule(date time.Time, loc geo.Location, method, school int) *ScheduleEntry {
	dateStr := date.Format("2006-01-02")
	key := scheduleKey(dateStr, loc, method, school)
	path := filepath.Join(c.dir, fmt.Sprintf(scheduleCacheFile, key))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry ScheduleEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	// A cached schedule for another day is useless.
	if entry.Date != dateStr {
		return nil
	}

	return &entry
}

// SaveSchedule writes a fetched schedule to the cache.
func (c *Cache) SaveSchedule(date time.Time, loc geo.Location, method, school int, resp *api.Response) error {
	dateStr := date.Format("2006-01-02")
	key := scheduleKey(dateStr, loc, method, school)
	path := filepath.Join(c.dir, fmt.Sprintf(scheduleCacheFile, key))

	entry := ScheduleEntry{
		Date:     dateStr,
		Method:   method,
		School:   school,
		Location: loc.Label,
		Timings:  resp.Data.Timings,
		DateInfo: resp.Data.Date,
		Meta:     resp.Data.Meta,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// LoadGeo attempts to read a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo() *geo.Location {
	path := filepath.Join(c.dir, geoCacheFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var entry geoEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	path := filepath.Join(c.dir, geoCacheFile)

	entry := geoEntry{
		Location: *loc,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geo cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}

	return nil
}

// LoadRolloverDate returns the calendar date (YYYY-MM-DD) of the last
// completed midnight rollover, or "" if none was recorded.
func (c *Cache) LoadRolloverDate() string {
	data, err := os.ReadFile(filepath.Join(c.dir, rolloverFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveRolloverDate records the calendar date of a completed rollover.
func (c *Cache) SaveRolloverDate(date string) error {
	path := filepath.Join(c.dir, rolloverFile)
	if err := os.WriteFile(path, []byte(date+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write rollover marker: %w", err)
	}
	return nil
}
