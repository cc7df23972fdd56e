// Package cnmaestro is a thin client for the cnMaestro management REST API:
// inventory, statistics and controller queries for cnWave 60 GHz networks.
package cnmaestro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpiryBuffer is subtracted from the nominal one-hour token lifetime
// so a token is refreshed before the platform rejects it.
const tokenExpiryBuffer = 300 * time.Second

type Config struct {
	// Host is the cnMaestro cloud host, without scheme.
	Host         string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

type Client struct {
	host         string
	clientID     string
	clientSecret string
	http         *http.Client

	mu          sync.Mutex
	token       string
	tokenTime   time.Time
	redirectURL string
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		host:         cfg.Host,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         httpClient,
	}
}

// bearerToken returns a cached access token, fetching a fresh one via the
// client-credentials grant when the cached token is near expiry. The token
// response also carries the per-tenant redirect URI that all later API
// calls must target.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenTime) < time.Hour-tokenExpiryBuffer {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	tokenURL := fmt.Sprintf("https://%s/api/v2/access/token", c.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		RedirectURI string `json:"redirect_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}

	c.token = payload.AccessToken
	c.tokenTime = time.Now()
	c.redirectURL = payload.RedirectURI

	return c.token, nil
}

// get performs an authenticated GET against the v2 API. HTTP error statuses
// are folded into an error-shaped payload rather than returned as errors, so
// the model sees what the platform said.
func (c *Client) get(ctx context.Context, endpoint string) (map[string]any, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	base := c.redirectURL
	c.mu.Unlock()

	requestURL := fmt.Sprintf("%s/api/v2/%s", base, strings.TrimPrefix(endpoint, "/"))
	slog.Debug("cnmaestro request", "url", requestURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cnmaestro request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("cnmaestro error response", "status", resp.StatusCode, "body", string(body))
		return map[string]any{
			"status":  "error",
			"code":    resp.StatusCode,
			"details": string(body),
		}, nil
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cnmaestro response: %w", err)
	}
	return payload, nil
}

// DeviceQuery holds the optional filters for device inventory listing.
// Type defaults to cnwave60 when empty.
type DeviceQuery struct {
	Network string
	Limit   string
	Offset  string
	Type    string
	Online  *bool
	Sort    string
	Site    string
	Fields  string
}

func (q DeviceQuery) encode() string {
	deviceType := q.Type
	if deviceType == "" {
		deviceType = "cnwave60"
	}

	var parts []string
	if q.Limit != "" {
		parts = append(parts, "limit="+q.Limit)
	}
	if q.Offset != "" {
		parts = append(parts, "offset="+q.Offset)
	}
	if q.Network != "" {
		parts = append(parts, "network="+q.Network)
	}
	if q.Online != nil {
		if *q.Online {
			parts = append(parts, "online=true")
		} else {
			parts = append(parts, "online=false")
		}
	}
	if q.Sort != "" {
		parts = append(parts, "sort="+q.Sort)
	}
	if q.Site != "" {
		parts = append(parts, "site="+q.Site)
	}
	parts = append(parts, "type="+deviceType)
	if q.Fields != "" {
		parts = append(parts, "fields="+q.Fields)
	}

	return strings.Join(parts, "&")
}

func (c *Client) Networks(ctx context.Context) (map[string]any, error) {
	return c.get(ctx, "networks")
}

func (c *Client) Devices(ctx context.Context, query DeviceQuery) (map[string]any, error) {
	endpoint := "devices"
	if qs := query.encode(); qs != "" {
		endpoint += "?" + qs
	}
	return c.get(ctx, endpoint)
}

func (c *Client) Sites(ctx context.Context, networkID string) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("networks/%s/sites", networkID))
}

func (c *Client) Site(ctx context.Context, networkID, siteID string) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("networks/%s/sites/%s", networkID, siteID))
}

func (c *Client) Links(ctx context.Context, networkID, fields string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/networks/%s/links", networkID)
	if fields != "" {
		endpoint += "?fields=" + fields
	}
	return c.get(ctx, endpoint)
}

func (c *Client) NetworkLinkStatistics(ctx context.Context, networkID, limit, offset, fields string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/networks/%s/links/statistics", networkID)

	var parts []string
	if limit != "" {
		parts = append(parts, "limit="+limit)
	}
	if offset != "" {
		parts = append(parts, "offset="+offset)
	}
	if len(parts) > 0 {
		endpoint += "?" + strings.Join(parts, "&")
	}

	return c.get(ctx, applyFieldsParam(endpoint, fields))
}

func (c *Client) DeviceLinkStatistics(ctx context.Context, mac, fields string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/devices/%s/links/statistics", NodeMAC(mac))
	return c.get(ctx, applyFieldsParam(endpoint, fields))
}

func (c *Client) SingleLinkStatistics(ctx context.Context, mac, linkName, fields string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/devices/%s/links/%s/statistics", NodeMAC(mac), linkName)
	return c.get(ctx, applyFieldsParam(endpoint, fields))
}

func (c *Client) DeviceLinkPerformance(ctx context.Context, mac, linkName, startTime, stopTime string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/devices/%s/links/%s/performance", NodeMAC(mac), linkName)

	var parts []string
	if startTime != "" {
		parts = append(parts, "start_time="+startTime)
	}
	if stopTime != "" {
		parts = append(parts, "stop_time="+stopTime)
	}
	if len(parts) > 0 {
		endpoint += "?" + strings.Join(parts, "&")
	}

	return c.get(ctx, endpoint)
}

func (c *Client) DeviceOverrides(ctx context.Context, networkID, name string) (map[string]any, error) {
	endpoint := fmt.Sprintf("cnwave60/networks/%s/devices/overrides", networkID)
	if name != "" {
		endpoint += "?name=" + name
	}
	return c.get(ctx, endpoint)
}

func (c *Client) ControllerInfo(ctx context.Context, networkID string) (map[string]any, error) {
	return c.get(ctx, fmt.Sprintf("cnwave60/networks/%s/controller", networkID))
}

func (c *Client) NetworkDeviceStatistics(ctx context.Context, networkID, limit, offset, fields string) (map[string]any, error) {
	parts := []string{"network=" + networkID}
	if limit != "" {
		parts = append(parts, "limit="+limit)
	}
	if offset != "" {
		parts = append(parts, "offset="+offset)
	}
	if fields != "" {
		parts = append(parts, "fields="+fields)
	}

	return c.get(ctx, "devices/statistics?"+strings.Join(parts, "&"))
}

func (c *Client) DeviceStatistics(ctx context.Context, mac, fields string) (map[string]any, error) {
	endpoint := fmt.Sprintf("devices/%s/statistics", NodeMAC(mac))
	if fields != "" {
		endpoint += "?fields=" + fields
	}
	return c.get(ctx, endpoint)
}
