package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/adhan-clock/internal/api"
	"github.com/smokyabdulrahman/adhan-clock/internal/cache"
	"github.com/smokyabdulrahman/adhan-clock/internal/geo"
)

// CalcConfig carries the calculation parameters forwarded to the API.
type CalcConfig struct {
	Method   int    // calculation method (e.g. 2 = ISNA)
	School   int    // asr school (0 = standard, 1 = Hanafi)
	Timezone string // IANA timezone name sent as timezonestring
}

// Fetcher turns (date, location, calculation config) into a validated Day,
// with retry on transient network failure and cache fallback when offline.
type Fetcher struct {
	Client *api.Client
	Cache  *cache.Cache // nil disables caching

	// backoff delays between retry attempts; sleep is swappable in tests.
	backoff []time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a Fetcher with the standard 1s/2s/4s backoff.
func NewFetcher(client *api.Client, c *cache.Cache) *Fetcher {
	return &Fetcher{
		Client:  client,
		Cache:   c,
		backoff: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		sleep:   sleepCtx,
	}
}

// sleepCtx waits for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fetch retrieves the schedule for the given calendar date.
//
// The coordinate request is anchored at local midnight plus one minute: the
// API buckets unix timestamps into calendar days and an exact-midnight value
// can round to the previous day.
//
// Only *api.NetworkError is retried (up to 3 attempts). After exhausting
// retries it falls back to the cached schedule, but only when that cache is
// for the requested calendar date; otherwise the last error propagates.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time, loc geo.Location, calc CalcConfig) (*Day, error) {
	tz := time.Local
	if calc.Timezone != "" {
		if parsed, err := time.LoadLocation(calc.Timezone); err == nil {
			tz = parsed
		}
	}

	anchor := time.Date(date.Year(), date.Month(), date.Day(), 0, 1, 0, 0, tz)

	var (
		resp *api.Response
		err  error
	)
	for attempt := 0; attempt < len(f.backoff); attempt++ {
		resp, err = f.request(ctx, anchor, loc, calc)
		if err == nil {
			break
		}

		var netErr *api.NetworkError
		if !errors.As(err, &netErr) {
			// ApiError/ParseError are data-source rejections; retrying
			// cannot help.
			return nil, err
		}

		if attempt < len(f.backoff)-1 {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("schedule fetch failed, retrying")
			if serr := f.sleep(ctx, f.backoff[attempt]); serr != nil {
				// Cancelled mid-backoff; the caller no longer wants the
				// result, so skip the cache fallback too.
				return nil, serr
			}
		}
	}

	if err != nil {
		if day := f.loadCached(date, loc, calc, tz); day != nil {
			log.Info().Str("date", day.DateKey()).Msg("network unavailable, using cached schedule")
			return day, nil
		}
		return nil, err
	}

	day, err := buildDay(resp.Data.Timings, resp.Data.Date, anchor, tz, loc.Label)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		if err := f.Cache.SaveSchedule(anchor, loc, calc.Method, calc.School, resp); err != nil {
			log.Debug().Err(err).Msg("failed to write schedule cache")
		}
	}

	return day, nil
}

func (f *Fetcher) request(ctx context.Context, anchor time.Time, loc geo.Location, calc CalcConfig) (*api.Response, error) {
	switch loc.Mode {
	case geo.ModeCity:
		return f.Client.FetchByCity(ctx, anchor, loc.City, loc.State, loc.Country, calc.Method, calc.School, calc.Timezone)
	default:
		return f.Client.FetchByCoordinates(ctx, anchor.Unix(), loc.Latitude, loc.Longitude, calc.Method, calc.School, calc.Timezone)
	}
}

// loadCached rebuilds a Day from the cache, or nil if there is no usable
// entry for this exact date.
func (f *Fetcher) loadCached(date time.Time, loc geo.Location, calc CalcConfig, tz *time.Location) *Day {
	if f.Cache == nil {
		return nil
	}
	entry := f.Cache.LoadSchedule(date, loc, calc.Method, calc.School)
	if entry == nil {
		return nil
	}
	label := entry.Location
	if label == "" {
		label = loc.Label
	}
	day, err := buildDay(entry.Timings, entry.DateInfo, date, tz, label)
	if err != nil {
		return nil
	}
	return day
}
