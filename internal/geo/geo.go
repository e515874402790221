// Package geo resolves the kiosk's location: manual override, IP-based
// auto-detection, cached detection, or the configured fallback city.
// Resolution never fails; a location error always degrades to a usable
// fallback rather than propagating.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Mode describes which form of location query the prayer-times API gets.
type Mode int

const (
	// ModeCoordinates queries by latitude/longitude.
	ModeCoordinates Mode = iota
	// ModeCity queries by named place (city/state/country).
	ModeCity
)

// Location is a resolved location in one of the two query forms.
type Location struct {
	Mode      Mode    `json:"mode"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
	// Label is the human-readable place name shown on the kiosk.
	Label string `json:"label"`
}

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

// API endpoints are variables (not constants) so tests can override them
// with httptest server URLs.
var (
	geoAPIURL     = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"
	reverseAPIURL = "https://nominatim.openstreetmap.org/reverse"
)

// detectTimeout bounds the one-shot geolocation request so the kiosk never
// hangs on startup waiting for a position.
const detectTimeout = 10 * time.Second

// Detect uses ip-api.com to determine the kiosk's location from its public
// IP address. This is a free service that requires no API key.
func Detect(ctx context.Context) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoAPIURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	loc := &Location{
		Mode:      ModeCoordinates,
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
	}
	if result.City != "" && result.Country != "" {
		loc.Label = result.City + ", " + result.Country
	}
	return loc, nil
}

// nominatimResponse maps the reverse-geocoding response fields we care about.
type nominatimResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// ReverseGeocode turns coordinates into a "City, Country" display label.
// Best effort: any failure returns an empty string, never an error the
// caller has to handle.
func ReverseGeocode(ctx context.Context, lat, lon float64) string {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	url := fmt.Sprintf("%s?lat=%f&lon=%f&format=json", reverseAPIURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "adhan-clock")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("reverse geocoding failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var result nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ""
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	if city == "" {
		city = result.Address.Village
	}
	if city == "" || result.Address.Country == "" {
		return ""
	}
	return city + ", " + result.Address.Country
}
