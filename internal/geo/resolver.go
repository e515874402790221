package geo

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Store persists detected locations between runs. Implemented by the file
// cache; nil disables caching.
type Store interface {
	LoadGeo() *Location
	SaveGeo(*Location) error
}

// Resolver picks the effective location.
// Priority: manual override > cached detection > IP auto-detect > fallback.
type Resolver struct {
	// Manual is a user-configured override; nil means auto.
	Manual *Location
	// Fallback is used when detection fails. Always city-mode.
	Fallback Location
	Store    Store
}

// Resolve returns a usable location. It never fails: detection errors
// degrade to the cached or fallback location.
func (r *Resolver) Resolve(ctx context.Context) Location {
	if r.Manual != nil {
		return *r.Manual
	}

	if r.Store != nil {
		if cached := r.Store.LoadGeo(); cached != nil {
			return *cached
		}
	}

	detected, err := Detect(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("geolocation failed, using fallback city")
		return r.Fallback
	}

	if detected.Label == "" {
		if label := ReverseGeocode(ctx, detected.Latitude, detected.Longitude); label != "" {
			detected.Label = label
		}
	}

	if r.Store != nil {
		if err := r.Store.SaveGeo(detected); err != nil {
			log.Debug().Err(err).Msg("failed to cache detected location")
		}
	}

	return *detected
}
