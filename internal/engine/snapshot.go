package engine

import (
	"time"

	"github.com/smokyabdulrahman/adhan-clock/internal/hijri"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

// approachingWindow is how far ahead of the focused prayer the kiosk
// switches into its "approaching" highlight.
const approachingWindow = 15 * time.Minute

// Snapshot is the read-only view exposed to the presentation layer.
// Derived fields (approaching, night mode) are recomputed on every read,
// never cached.
type Snapshot struct {
	Prayers       []schedule.Entry `json:"prayers"`
	FocusedIndex  int              `json:"focused_index"`
	FocusedPrayer *schedule.Entry  `json:"focused_prayer,omitempty"`
	CurrentTime   time.Time        `json:"current_time"`
	IsApproaching bool             `json:"is_approaching"`
	IsActive      bool             `json:"is_active"`
	IsNightMode   bool             `json:"is_night_mode"`
	Banner        string           `json:"banner,omitempty"`
	GregorianDate string           `json:"gregorian_date"`
	HijriDate     string           `json:"hijri_date"`
	SpecialDay    string           `json:"special_day,omitempty"`
	Location      string           `json:"location"`
	IsLoading     bool             `json:"is_loading"`
	LastError     string           `json:"last_error,omitempty"`
}

// Snapshot returns the current engine state for rendering.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clk.Now()
	s := Snapshot{
		FocusedIndex: e.focused,
		CurrentTime:  now,
		IsActive:     e.alertActive,
		IsLoading:    e.loading,
		Location:     e.loc.Label,
	}

	if e.day != nil {
		s.Prayers = e.day.Entries
		s.GregorianDate = e.day.GregorianLabel
		s.HijriDate = e.day.HijriLabel
		s.SpecialDay = hijri.SpecialDay(e.day.HijriMonth, e.day.HijriDay)
		if e.day.Location != "" {
			s.Location = e.day.Location
		}
	}

	if e.day.Valid() {
		if e.focused < len(e.day.Entries) {
			ent := e.day.Entries[e.focused]
			s.FocusedPrayer = &ent
			until := ent.At.Sub(now)
			// Placeholder times are fabricated; never highlight them as
			// imminent.
			s.IsApproaching = !e.day.Placeholder && until > 0 && until <= approachingWindow
		}
		s.IsNightMode = nightMode(now, e.day)
	} else if e.lastErr == nil {
		s.LastError = "schedule unavailable"
	}

	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}

	if e.dispatcher != nil {
		if prayer, ok := e.dispatcher.Banner(); ok {
			s.Banner = prayer
		}
	}

	return s
}

// nightMode reports whether now falls between Isha and the next Fajr,
// compared on time-of-day only, ignoring the date.
func nightMode(now time.Time, day *schedule.Day) bool {
	fajr := day.Entry(schedule.Fajr)
	isha := day.Entry(schedule.Isha)
	if fajr == nil || isha == nil {
		return false
	}
	tod := secondsOfDay(now)
	return tod >= secondsOfDay(isha.At) || tod < secondsOfDay(fajr.At)
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
