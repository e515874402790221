package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const okBody = `{
	"code": 200,
	"status": "OK",
	"data": {
		"timings": {
			"Fajr": "05:30",
			"Sunrise": "06:45",
			"Dhuhr": "12:15",
			"Asr": "15:45",
			"Sunset": "18:20",
			"Maghrib": "18:20",
			"Isha": "19:45"
		},
		"date": {
			"hijri": {
				"day": "10",
				"month": {"number": 9, "en": "Ramadan"},
				"year": "1446",
				"designation": {"abbreviated": "AH"}
			},
			"gregorian": {
				"day": "10",
				"weekday": {"en": "Monday"},
				"month": {"number": 3, "en": "March"},
				"year": "2025"
			}
		},
		"meta": {"latitude": 40.7, "longitude": -73.8, "timezone": "America/New_York"}
	}
}`

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient()
	client.BaseURL = server.URL
	return client, server
}

func TestFetchByCoordinates(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, okBody)
	})
	defer server.Close()

	resp, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, 2, 1, "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Data.Timings.Fajr != "05:30" {
		t.Errorf("Fajr = %q, want %q", resp.Data.Timings.Fajr, "05:30")
	}
	if gotPath != "/timings/1741582860" {
		t.Errorf("path = %q, want /timings/1741582860", gotPath)
	}
	if got := gotQuery["method"]; len(got) != 1 || got[0] != "2" {
		t.Errorf("method = %v, want [2]", got)
	}
	if got := gotQuery["school"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("school = %v, want [1]", got)
	}
	if got := gotQuery["timezonestring"]; len(got) != 1 || got[0] != "America/New_York" {
		t.Errorf("timezonestring = %v, want [America/New_York]", got)
	}
}

func TestFetchByCoordinatesOmitsUnsetParams(t *testing.T) {
	var gotQuery map[string][]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, okBody)
	})
	defer server.Close()

	_, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, -1, -1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, param := range []string{"method", "school", "timezonestring"} {
		if _, ok := gotQuery[param]; ok {
			t.Errorf("unset %s should not be sent, got %v", param, gotQuery[param])
		}
	}
}

func TestFetchByCity(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, okBody)
	})
	defer server.Close()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchByCity(context.Background(), date, "Queens", "NY", "USA", 2, 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/timingsByCity" {
		t.Errorf("path = %q, want /timingsByCity", gotPath)
	}
	if got := gotQuery["date"]; len(got) != 1 || got[0] != "10-03-2025" {
		t.Errorf("date = %v, want [10-03-2025]", got)
	}
	if got := gotQuery["city"]; len(got) != 1 || got[0] != "Queens" {
		t.Errorf("city = %v, want [Queens]", got)
	}
	if got := gotQuery["state"]; len(got) != 1 || got[0] != "NY" {
		t.Errorf("state = %v, want [NY]", got)
	}
}

func TestFetchByCityEmptyStateOmitted(t *testing.T) {
	var gotQuery map[string][]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, okBody)
	})
	defer server.Close()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchByCity(context.Background(), date, "London", "", "UK", -1, -1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotQuery["state"]; ok {
		t.Errorf("empty state should not be sent, got %v", gotQuery["state"])
	}
}

func TestHTTPErrorIsNetworkError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, 2, 1, "")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // connection refused from here on

	_, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, 2, 1, "")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
}

func TestNon200CodeIsAPIError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": 404, "status": "Not Found", "data": {}}`)
	})
	defer server.Close()

	_, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, 2, 1, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 404 {
		t.Errorf("code = %d, want 404", apiErr.Code)
	}
}

func TestMalformedJSONIsParseError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": 200, "status":`)
	})
	defer server.Close()

	_, err := client.FetchByCoordinates(context.Background(), 1741582860, 40.7, -73.8, 2, 1, "")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestHijriDateFormat(t *testing.T) {
	h := HijriDate{
		Day:         "10",
		Month:       HijriMonth{Number: 9, En: "Ramadan"},
		Year:        "1446",
		Designation: HijriDesignation{Abbreviated: "AH"},
	}
	if got := h.Format(); got != "10 Ramadan 1446 AH" {
		t.Errorf("Format() = %q", got)
	}

	if got := (HijriDate{}).Format(); got != "" {
		t.Errorf("empty Format() = %q, want empty", got)
	}
}

func TestGregorianDateFormat(t *testing.T) {
	g := GregorianDate{
		Day:     "10",
		Weekday: GregorianDay{En: "Monday"},
		Month:   GregorianMonth{Number: 3, En: "March"},
		Year:    "2025",
	}
	if got := g.Format(); got != "Monday, March 10, 2025" {
		t.Errorf("Format() = %q", got)
	}

	g.Weekday.En = ""
	if got := g.Format(); got != "March 10, 2025" {
		t.Errorf("Format() without weekday = %q", got)
	}
}
