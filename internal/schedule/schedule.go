// Package schedule models a single day's prayer schedule and fetches it
// from the Al Adhan API with retry, backoff, and offline cache fallback.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/adhan-clock/internal/api"
)

// The five canonical daily prayers, in fixed order. This order is also the
// stable tie-break when two timestamps coincide.
const (
	Fajr    = "Fajr"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

// CanonicalNames lists the five tracked prayers in canonical order.
var CanonicalNames = []string{Fajr, Dhuhr, Asr, Maghrib, Isha}

// canonicalRank maps a prayer name to its position in the fixed order.
var canonicalRank = map[string]int{
	Fajr: 0, Dhuhr: 1, Asr: 2, Maghrib: 3, Isha: 4,
}

// Entry is one prayer on a specific calendar date. Immutable once built.
type Entry struct {
	Name      string    `json:"name"`
	LocalTime string    `json:"local_time"` // "HH:MM"
	At        time.Time `json:"at"`         // absolute instant on the schedule's date
}

// Day is one calendar date's ordered schedule plus its display labels.
// Replaced wholesale on each fetch, never mutated field by field.
type Day struct {
	Date           time.Time `json:"date"`
	Entries        []Entry   `json:"entries"`
	GregorianLabel string    `json:"gregorian_label"`
	HijriLabel     string    `json:"hijri_label"`
	HijriMonth     int       `json:"hijri_month"`
	HijriDay       int       `json:"hijri_day"`
	Location       string    `json:"location"`

	// Placeholder marks the fabricated startup schedule. Placeholder
	// times render on the kiosk but never fire alerts.
	Placeholder bool `json:"-"`
}

// Valid reports whether the day carries all five canonical prayers in
// ascending timestamp order.
func (d *Day) Valid() bool {
	if d == nil || len(d.Entries) != len(CanonicalNames) {
		return false
	}
	seen := map[string]bool{}
	for i, e := range d.Entries {
		if _, ok := canonicalRank[e.Name]; !ok || seen[e.Name] {
			return false
		}
		seen[e.Name] = true
		if i > 0 && e.At.Before(d.Entries[i-1].At) {
			return false
		}
	}
	return true
}

// Entry returns the named prayer's entry, or nil if absent.
func (d *Day) Entry(name string) *Entry {
	if d == nil {
		return nil
	}
	for i := range d.Entries {
		if d.Entries[i].Name == name {
			return &d.Entries[i]
		}
	}
	return nil
}

// DateKey returns the day's calendar date as YYYY-MM-DD.
func (d *Day) DateKey() string {
	return d.Date.Format("2006-01-02")
}

// buildDay converts raw API timings into a validated Day on the given date.
// Fails with *api.ParseError if any of the five prayers is missing or
// unparsable; partial schedules are never returned.
func buildDay(timings api.Timings, dateInfo api.DateInfo, date time.Time, loc *time.Location, label string) (*Day, error) {
	raw := map[string]string{
		Fajr:    timings.Fajr,
		Dhuhr:   timings.Dhuhr,
		Asr:     timings.Asr,
		Maghrib: timings.Maghrib,
		Isha:    timings.Isha,
	}

	entries := make([]Entry, 0, len(CanonicalNames))
	for _, name := range CanonicalNames {
		s := raw[name]
		at, hhmm, err := parseTimeStr(s, date, loc)
		if err != nil {
			return nil, &api.ParseError{Msg: fmt.Sprintf("%s (%q): %v", name, s, err)}
		}
		entries = append(entries, Entry{Name: name, LocalTime: hhmm, At: at})
	}

	// Sort ascending by timestamp with the canonical order as a stable
	// secondary key. Same-day times never collide in practice.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].At.Equal(entries[j].At) {
			return canonicalRank[entries[i].Name] < canonicalRank[entries[j].Name]
		}
		return entries[i].At.Before(entries[j].At)
	})

	day := &Day{
		Date:           time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc),
		Entries:        entries,
		GregorianLabel: dateInfo.Gregorian.Format(),
		HijriLabel:     dateInfo.Hijri.Format(),
		Location:       label,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(dateInfo.Hijri.Day)); err == nil {
		day.HijriDay = n
	}
	day.HijriMonth = dateInfo.Hijri.Month.Number

	return day, nil
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into an
// absolute time on the given date, returning the cleaned "HH:MM" form too.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, string, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid time format: %q", raw)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid hour in %q", raw)
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid minute in %q", raw)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, "", fmt.Errorf("time out of range in %q", raw)
	}

	at := time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc)
	return at, fmt.Sprintf("%02d:%02d", hour, min), nil
}

// Sample returns a placeholder schedule used at startup before the first
// real fetch lands. All times are on the given date.
func Sample(date time.Time, loc *time.Location) *Day {
	mk := func(name string, h, m int) Entry {
		return Entry{
			Name:      name,
			LocalTime: fmt.Sprintf("%02d:%02d", h, m),
			At:        time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc),
		}
	}
	return &Day{
		Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc),
		Entries: []Entry{
			mk(Fajr, 5, 30),
			mk(Dhuhr, 12, 15),
			mk(Asr, 15, 45),
			mk(Maghrib, 18, 20),
			mk(Isha, 19, 45),
		},
		Placeholder: true,
	}
}
