// Package engine implements the prayer-schedule state machine: the single
// authority for which prayer is being tracked, whether its alert has fired,
// and when the day rolls over.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/adhan-clock/internal/alert"
	"github.com/smokyabdulrahman/adhan-clock/internal/clock"
	"github.com/smokyabdulrahman/adhan-clock/internal/geo"
	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

// Fetcher loads a day's schedule. Implemented by schedule.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time, loc geo.Location, calc schedule.CalcConfig) (*schedule.Day, error)
}

// Dispatcher fires the configured alert for a prayer and reports completion.
// Implemented by alert.Dispatcher.
type Dispatcher interface {
	Dispatch(prayer string, mode alert.Mode, onDone func()) bool
	Stop()
	Banner() (string, bool)
}

// AlertPolicy maps a prayer name to its configured alert mode.
// Implemented by config.Config.
type AlertPolicy interface {
	AlertMode(prayer string) alert.Mode
}

// RolloverStore persists the last completed rollover date so a restart
// inside the rollover window does not roll twice. Implemented by
// cache.Cache; nil disables persistence.
type RolloverStore interface {
	LoadRolloverDate() string
	SaveRolloverDate(date string) error
}

// Options wires an Engine. Clock defaults to the system clock.
type Options struct {
	Clock      clock.Clock
	Fetcher    Fetcher
	Dispatcher Dispatcher
	Alerts     AlertPolicy
	Rollover   RolloverStore
	Location   geo.Location
	Calc       schedule.CalcConfig
	// OnChange, when set, receives a snapshot after every state-changing
	// operation. Subscribers read snapshots only; they never mutate.
	OnChange func(Snapshot)
}

// Engine owns all schedule state. External components read snapshots or
// send commands; nothing outside the engine mutates its fields.
type Engine struct {
	mu         sync.Mutex
	clk        clock.Clock
	fetcher    Fetcher
	dispatcher Dispatcher
	alerts     AlertPolicy
	marker     RolloverStore
	loc        geo.Location
	calc       schedule.CalcConfig
	onChange   func(Snapshot)

	day             *schedule.Day
	focused         int // index into day.Entries; len(entries) = all passed
	played          map[string]struct{}
	fetchedTomorrow bool
	alertActive     bool
	alertDay        string // calendar date the in-flight alert fired on
	rolledOver      string // last calendar date a rollover completed
	generation      uint64 // outstanding-fetch token
	loading         bool
	lastErr         error

	// spawn runs background work; swapped for a synchronous variant in
	// tests.
	spawn func(func())
}

// New creates an Engine seeded with a placeholder schedule for today. Call
// Run (or Refresh) to load the real one.
func New(opts Options) *Engine {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}

	e := &Engine{
		clk:        clk,
		fetcher:    opts.Fetcher,
		dispatcher: opts.Dispatcher,
		alerts:     opts.Alerts,
		marker:     opts.Rollover,
		loc:        opts.Location,
		calc:       opts.Calc,
		onChange:   opts.OnChange,
		played:     make(map[string]struct{}),
		spawn:      func(fn func()) { go fn() },
	}

	now := clk.Now()
	e.rolledOver = dateKey(now)
	if e.marker != nil {
		if m := e.marker.LoadRolloverDate(); m > e.rolledOver {
			e.rolledOver = m
		}
	}

	// Seed with a placeholder so snapshots render before the first real
	// fetch. No tomorrow pre-fetch off placeholder times.
	e.mu.Lock()
	e.day = schedule.Sample(now, now.Location())
	e.focused = firstFutureIndex(e.day, now)
	e.mu.Unlock()

	return e
}

// Run drives the engine: an initial refresh, then a 1-second tick until the
// context is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.Refresh()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("engine shutting down")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Initialize replaces the schedule and recomputes the focused prayer: the
// first entry whose timestamp is strictly after the current time, or
// past-end when every prayer has already been reached.
func (e *Engine) Initialize(day *schedule.Day) {
	e.mu.Lock()
	e.initializeLocked(day)
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) initializeLocked(day *schedule.Day) {
	e.day = day
	e.focused = firstFutureIndex(day, e.clk.Now())

	// A new schedule supersedes any pending alert completion. The focus
	// was just recomputed; a late completion advancing it again would
	// skip a prayer whose alert never fired.
	e.alertDay = ""

	if e.focused >= len(day.Entries) && day.Valid() && !day.Placeholder {
		e.prefetchTomorrowLocked()
	}
}

// firstFutureIndex returns the index of the first entry strictly after now,
// or len(entries) when every prayer has been reached.
func firstFutureIndex(day *schedule.Day, now time.Time) int {
	for i := range day.Entries {
		if day.Entries[i].At.After(now) {
			return i
		}
	}
	return len(day.Entries)
}

// Tick is invoked on a 1-second cadence. It fires at most one alert per
// (prayer, date), checks the once-per-day midnight rollover, and never
// blocks on I/O.
func (e *Engine) Tick() {
	e.mu.Lock()
	now := e.clk.Now()

	var fire *schedule.Entry
	if e.day.Valid() && !e.day.Placeholder && e.focused < len(e.day.Entries) {
		ent := e.day.Entries[e.focused]
		if !now.Before(ent.At) {
			key := playKey(ent.Name, ent.At)
			if _, done := e.played[key]; !done {
				e.played[key] = struct{}{}
				e.alertActive = true
				e.alertDay = e.day.DateKey()
				fire = &ent
			}
		}
	}

	var rollover bool
	today := dateKey(now)
	if now.Hour() == 0 && now.Minute() >= 1 && today != e.rolledOver {
		rollover = true
		e.rolledOver = today
		e.played = make(map[string]struct{})
		e.fetchedTomorrow = false
	}
	e.mu.Unlock()

	if fire != nil {
		mode := e.alerts.AlertMode(fire.Name)
		log.Info().Str("prayer", fire.Name).Str("mode", string(mode)).Msg("prayer time reached")
		if !e.dispatcher.Dispatch(fire.Name, mode, e.Advance) {
			// Dispatcher was busy; keep the focus moving anyway.
			e.Advance()
		}
	}

	if rollover {
		log.Info().Str("date", today).Msg("midnight rollover")
		if e.marker != nil {
			if err := e.marker.SaveRolloverDate(today); err != nil {
				log.Debug().Err(err).Msg("failed to persist rollover marker")
			}
		}
		e.Refresh()
	}

	e.notify()
}

// Advance moves focus past the prayer whose alert just completed. Called by
// the dispatcher's completion signal; focus only ever increases within a
// day, so a completion that arrives after a rollover is ignored.
func (e *Engine) Advance() {
	e.mu.Lock()
	e.alertActive = false
	if e.day != nil && e.day.DateKey() == e.alertDay {
		if e.focused < len(e.day.Entries) {
			e.focused++
		}
		if e.focused >= len(e.day.Entries) && e.day.Valid() && !e.day.Placeholder {
			e.prefetchTomorrowLocked()
		}
	}
	e.alertDay = ""
	e.mu.Unlock()
	e.notify()
}

// Refresh starts a full schedule reload for today. A newer Refresh
// supersedes any in-flight one: late results for an old generation are
// discarded instead of overwriting newer state.
func (e *Engine) Refresh() {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.loading = true
	e.mu.Unlock()
	e.notify()

	e.spawn(func() { e.reload(context.Background(), gen) })
}

func (e *Engine) reload(ctx context.Context, gen uint64) {
	now := e.clk.Now()
	day, err := e.fetcher.Fetch(ctx, now, e.loc, e.calc)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		log.Debug().Uint64("generation", gen).Msg("discarding superseded fetch result")
		return
	}
	e.loading = false
	if err != nil {
		// Keep showing the last known schedule; the error surfaces in
		// the snapshot.
		e.lastErr = err
		e.mu.Unlock()
		log.Error().Err(err).Msg("schedule reload failed")
		e.notify()
		return
	}
	e.lastErr = nil
	e.initializeLocked(day)
	e.mu.Unlock()

	log.Info().Str("date", day.DateKey()).Str("location", day.Location).Msg("schedule loaded")
	e.notify()
}

// prefetchTomorrowLocked warms the cache with tomorrow's schedule exactly
// once per day, triggered when focus passes the last prayer.
func (e *Engine) prefetchTomorrowLocked() {
	if e.fetchedTomorrow || e.fetcher == nil {
		return
	}
	e.fetchedTomorrow = true

	tomorrow := e.clk.Now().AddDate(0, 0, 1)
	e.spawn(func() {
		if _, err := e.fetcher.Fetch(context.Background(), tomorrow, e.loc, e.calc); err != nil {
			log.Warn().Err(err).Msg("tomorrow pre-fetch failed")
		}
	})
}

// StopAlert cancels the in-flight alert. Completion still flows through
// Advance, so focus moves past the stopped prayer.
func (e *Engine) StopAlert() {
	e.dispatcher.Stop()
}

// TriggerAlertNow is a debug command: fire the focused prayer's alert
// immediately without touching the played bookkeeping or the focus.
func (e *Engine) TriggerAlertNow() {
	e.mu.Lock()
	name := schedule.Fajr
	if e.day.Valid() {
		if e.focused < len(e.day.Entries) {
			name = e.day.Entries[e.focused].Name
		} else {
			name = e.day.Entries[len(e.day.Entries)-1].Name
		}
	}
	wasActive := e.alertActive
	e.alertActive = true
	e.alertDay = "" // completion must not advance focus
	e.mu.Unlock()
	e.notify()

	ok := e.dispatcher.Dispatch(name, e.alerts.AlertMode(name), func() {
		e.mu.Lock()
		e.alertActive = false
		e.mu.Unlock()
		e.notify()
	})
	if !ok {
		// Rejected dispatch has no completion; don't leave the active
		// flag stuck on.
		e.mu.Lock()
		e.alertActive = wasActive
		e.mu.Unlock()
		e.notify()
	}
}

// SimulateFocusedPrayerReached is a debug command: run the full
// reached-alert path for the focused prayer, deliberately bypassing the
// at-most-once guard so alerts can be replayed.
func (e *Engine) SimulateFocusedPrayerReached() {
	e.mu.Lock()
	if !e.day.Valid() || e.focused >= len(e.day.Entries) {
		e.mu.Unlock()
		return
	}
	ent := e.day.Entries[e.focused]
	e.alertActive = true
	e.alertDay = e.day.DateKey()
	e.mu.Unlock()
	e.notify()

	e.dispatcher.Dispatch(ent.Name, e.alerts.AlertMode(ent.Name), e.Advance)
}

func (e *Engine) notify() {
	if e.onChange == nil {
		return
	}
	e.onChange(e.Snapshot())
}

func playKey(name string, at time.Time) string {
	return name + "|" + at.Format("2006-01-02")
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
