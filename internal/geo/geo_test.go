package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// withGeoServer points the ip-api endpoint at a test server for the
// duration of a test.
func withGeoServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	old := geoAPIURL
	geoAPIURL = server.URL
	t.Cleanup(func() {
		geoAPIURL = old
		server.Close()
	})
}

func withReverseServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	old := reverseAPIURL
	reverseAPIURL = server.URL
	t.Cleanup(func() {
		reverseAPIURL = old
		server.Close()
	})
}

func TestDetectSuccess(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","lat":40.7,"lon":-73.8,"city":"Queens","country":"United States","timezone":"America/New_York"}`)
	})

	loc, err := Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if loc.Mode != ModeCoordinates {
		t.Errorf("Mode = %v, want ModeCoordinates", loc.Mode)
	}
	if loc.Latitude != 40.7 || loc.Longitude != -73.8 {
		t.Errorf("coords = %f,%f", loc.Latitude, loc.Longitude)
	}
	if loc.Label != "Queens, United States" {
		t.Errorf("Label = %q", loc.Label)
	}
	if loc.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q", loc.Timezone)
	}
}

func TestDetectAPIFailure(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"fail","message":"private range"}`)
	})

	if _, err := Detect(context.Background()); err == nil {
		t.Fatal("expected error for fail status")
	}
}

func TestDetectHTTPError(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := Detect(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestReverseGeocode(t *testing.T) {
	withReverseServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "adhan-clock" {
			t.Errorf("missing User-Agent header")
		}
		fmt.Fprint(w, `{"address":{"city":"Queens","country":"United States"}}`)
	})

	if got := ReverseGeocode(context.Background(), 40.7, -73.8); got != "Queens, United States" {
		t.Errorf("label = %q", got)
	}
}

func TestReverseGeocodeTownFallback(t *testing.T) {
	withReverseServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"address":{"town":"Dunstable","country":"United Kingdom"}}`)
	})

	if got := ReverseGeocode(context.Background(), 51.9, -0.5); got != "Dunstable, United Kingdom" {
		t.Errorf("label = %q", got)
	}
}

func TestReverseGeocodeDegradesToEmpty(t *testing.T) {
	withReverseServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if got := ReverseGeocode(context.Background(), 40.7, -73.8); got != "" {
		t.Errorf("label = %q, want empty on failure", got)
	}
}

type memStore struct {
	loc   *Location
	saved *Location
}

func (m *memStore) LoadGeo() *Location { return m.loc }

func (m *memStore) SaveGeo(loc *Location) error {
	m.saved = loc
	return nil
}

func TestResolveManualWins(t *testing.T) {
	manual := &Location{Mode: ModeCoordinates, Latitude: 1, Longitude: 2}
	r := &Resolver{
		Manual: manual,
		Store:  &memStore{loc: &Location{City: "Cached"}},
	}

	got := r.Resolve(context.Background())
	if got.Latitude != 1 || got.Longitude != 2 {
		t.Errorf("manual override ignored: %+v", got)
	}
}

func TestResolveUsesCache(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("detection should not run when the cache has a location")
	})

	r := &Resolver{Store: &memStore{loc: &Location{City: "Cached", Label: "Cached, X"}}}
	got := r.Resolve(context.Background())
	if got.City != "Cached" {
		t.Errorf("cached location ignored: %+v", got)
	}
}

func TestResolveDetectsAndCaches(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","lat":40.7,"lon":-73.8,"city":"Queens","country":"United States"}`)
	})

	store := &memStore{}
	r := &Resolver{Store: store}
	got := r.Resolve(context.Background())

	if got.Latitude != 40.7 {
		t.Errorf("detected location not returned: %+v", got)
	}
	if store.saved == nil || store.saved.Latitude != 40.7 {
		t.Error("detected location was not cached")
	}
}

func TestResolveFallsBack(t *testing.T) {
	withGeoServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	fallback := Location{Mode: ModeCity, City: "Queens", State: "NY", Country: "USA"}
	r := &Resolver{Fallback: fallback}
	got := r.Resolve(context.Background())

	if got.Mode != ModeCity || got.City != "Queens" {
		t.Errorf("fallback not used: %+v", got)
	}
}
