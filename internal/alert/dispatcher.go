package alert

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/adhan-clock/internal/schedule"
)

// notificationDuration is how long the visual banner stays up before the
// dispatcher auto-dismisses it and signals completion.
const notificationDuration = 30 * time.Second

// Player plays a named audio asset. done fires exactly once, when playback
// naturally finishes or fails to decode/start.
type Player interface {
	Play(path string, done func(err error)) error
	Stop()
}

// Assets names the audio files for the adhan mode. Fajr uses its own asset
// when configured, falling back to the standard one.
type Assets struct {
	Adhan string
	Fajr  string
}

// Dispatcher owns the playback resource. At most one alert is in flight at
// a time; a Dispatch call while one is active is rejected.
type Dispatcher struct {
	mu     sync.Mutex
	player Player
	assets Assets

	active bool
	prayer string
	banner bool
	done   func()
	timer  *time.Timer

	// bannerDuration is overridable in tests.
	bannerDuration time.Duration
}

// NewDispatcher creates a Dispatcher over the given player and assets.
func NewDispatcher(player Player, assets Assets) *Dispatcher {
	return &Dispatcher{
		player:         player,
		assets:         assets,
		bannerDuration: notificationDuration,
	}
}

// Dispatch fires the alert for a prayer in the given mode. onDone is called
// exactly once when the alert's side effect completes: when audio playback
// naturally finishes, when the banner auto-dismisses, or immediately for
// silent mode. Returns false if another alert is already in flight.
func (d *Dispatcher) Dispatch(prayer string, mode Mode, onDone func()) bool {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		log.Warn().Str("prayer", prayer).Msg("alert already in flight, dropping dispatch")
		return false
	}

	if mode == ModeSilent {
		d.mu.Unlock()
		log.Info().Str("prayer", prayer).Msg("silent alert")
		if onDone != nil {
			onDone()
		}
		return true
	}

	d.active = true
	d.prayer = prayer
	var once sync.Once
	d.done = func() {
		once.Do(func() {
			d.finish()
			if onDone != nil {
				onDone()
			}
		})
	}

	switch mode {
	case ModeNotification:
		d.banner = true
		done := d.done
		d.timer = time.AfterFunc(d.bannerDuration, done)
		d.mu.Unlock()
		log.Info().Str("prayer", prayer).Msg("showing alert banner")
		return true

	default: // ModeAdhan
		asset := d.assets.Adhan
		if prayer == schedule.Fajr && d.assets.Fajr != "" {
			asset = d.assets.Fajr
		}
		done := d.done
		d.mu.Unlock()

		log.Info().Str("prayer", prayer).Str("asset", asset).Msg("playing adhan")
		if err := d.player.Play(asset, func(err error) {
			if err != nil {
				log.Error().Err(err).Str("prayer", prayer).Msg("adhan playback failed")
			}
			done()
		}); err != nil {
			// Playback never started; complete anyway so the engine
			// can advance.
			log.Error().Err(err).Str("prayer", prayer).Msg("could not start adhan playback")
			done()
		}
		return true
	}
}

// finish clears in-flight state. Called exactly once per dispatch.
func (d *Dispatcher) finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = false
	d.banner = false
	d.prayer = ""
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the in-flight alert, if any, and signals its completion.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	done := d.done
	d.mu.Unlock()

	d.player.Stop()
	if done != nil {
		done()
	}
}

// Active reports whether an alert is currently in flight.
func (d *Dispatcher) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Banner returns the prayer name for the currently visible banner, if any.
func (d *Dispatcher) Banner() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.banner {
		return "", false
	}
	return d.prayer, true
}
