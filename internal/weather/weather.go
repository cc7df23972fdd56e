// Package weather looks up historical precipitation from the Open-Meteo
// archive API, used to correlate link degradation with rain.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Precipitation returns hourly precipitation for a coordinate between two
// YYYY-MM-DD dates.
func (c *Client) Precipitation(ctx context.Context, latitude, longitude float64, startDate, endDate string) (map[string]any, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)
	params.Set("hourly", "precipitation")

	requestURL := c.baseURL + "?" + params.Encode()
	slog.Info("requesting weather data", "url", requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weather request: %s", resp.Status)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather response: %w", err)
	}
	return payload, nil
}

// CurrentUTCTime returns the current UTC time in ISO 8601 form with a Z
// suffix, e.g. 2025-07-06T13:45:00Z.
func CurrentUTCTime() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
