package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// FetchByCoordinates fetches prayer times for the given coordinates using
// the timestamp form of the timings endpoint. The timestamp should be local
// midnight (plus one minute) on the target date; the API rounds timestamps
// to a calendar day and a bare midnight value can land on the previous day.
func (c *Client) FetchByCoordinates(ctx context.Context, unix int64, lat, lon float64, method, school int, timezone string) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%d", c.BaseURL, unix)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	if method >= 0 {
		params.Set("method", fmt.Sprintf("%d", method))
	}
	if school >= 0 {
		params.Set("school", fmt.Sprintf("%d", school))
	}
	if timezone != "" {
		params.Set("timezonestring", timezone)
	}

	return c.doRequest(ctx, endpoint, params)
}

// FetchByCity fetches prayer times for the given date and named place.
// state may be empty for countries without one.
func (c *Client) FetchByCity(ctx context.Context, date time.Time, city, state, country string, method, school int, timezone string) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timingsByCity", c.BaseURL)

	params := url.Values{}
	params.Set("city", city)
	if state != "" {
		params.Set("state", state)
	}
	params.Set("country", country)
	params.Set("date", date.Format("02-01-2006"))
	if method >= 0 {
		params.Set("method", fmt.Sprintf("%d", method))
	}
	if school >= 0 {
		params.Set("school", fmt.Sprintf("%d", school))
	}
	if timezone != "" {
		params.Set("timezonestring", timezone)
	}

	return c.doRequest(ctx, endpoint, params)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &NetworkError{Err: fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))}
	}

	var apiResp Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("failed to decode API response: %v", err)}
	}

	if apiResp.Code != 200 {
		return nil, &APIError{Code: apiResp.Code, Status: apiResp.Status}
	}

	return &apiResp, nil
}
