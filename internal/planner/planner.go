// Package planner predicts link-budget performance for a deployed link by
// feeding the link's live endpoint data into the LINKPlanner prediction
// service and reporting both directions.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/netwave-ai/netwave/internal/cnmaestro"
)

type antenna struct {
	Product   string
	Variant   string
	ID        string
	Beamwidth float64
	Gain      float64
}

// The antenna catalogue the prediction service keys on. V3000 radios use
// the high-gain dish variant; everything else uses its single default.
var antennas = []antenna{
	{Product: "V3000", Variant: "high_gain", ID: "2a8d8829-e11d-417b-823f-1600833c3c5f", Beamwidth: 4.0, Gain: 44.5},
	{Product: "V3000", Variant: "mid_gain", ID: "723193c3-73f9-4a78-9b00-09a47c3b1cf5", Beamwidth: 4.0, Gain: 42.2},
	{Product: "V2000", Variant: "default", ID: "8bbd9c95-732d-49dc-9a27-c44827308f96", Beamwidth: 20.0, Gain: 34.5},
	{Product: "V5000", Variant: "default", ID: "d289296b-f730-41a4-b2c0-0410fb26d76d", Beamwidth: 280.0, Gain: 22.5},
	{Product: "V1000", Variant: "default", ID: "6b5f7168-8d8c-4862-91a7-ac86787451f8", Beamwidth: 90.0, Gain: 22.5},
}

func antennaFor(product, variant string) (antenna, bool) {
	for _, a := range antennas {
		if strings.EqualFold(a.Product, product) && a.Variant == variant {
			return a, true
		}
	}
	return antenna{}, false
}

// Maestro is the slice of the cnMaestro client the planner needs.
type Maestro interface {
	Links(ctx context.Context, networkID, fields string) (map[string]any, error)
	Devices(ctx context.Context, query cnmaestro.DeviceQuery) (map[string]any, error)
}

type Client struct {
	url     string
	secret  string
	http    *http.Client
	maestro Maestro
}

func NewClient(url, secret string, httpClient *http.Client, maestro Maestro) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{url: url, secret: secret, http: httpClient, maestro: maestro}
}

// Predict resolves the named link's endpoints from live inventory, assembles
// the prediction request and returns per-direction predicted RSSI, RX MCS
// and fade margin. Lookup misses come back as error-shaped payloads so the
// model can read them.
func (c *Client) Predict(ctx context.Context, networkID, linkName string) (map[string]any, error) {
	linksResp, err := c.maestro.Links(ctx, networkID, "")
	if err != nil {
		return nil, err
	}
	links, ok := dataList(linksResp)
	if !ok {
		return errorResult("Unable to fetch link list from cnMaestro. The API may be temporarily busy or unreachable."), nil
	}

	devicesResp, err := c.maestro.Devices(ctx, cnmaestro.DeviceQuery{Network: networkID})
	if err != nil {
		return nil, err
	}
	devices, ok := dataList(devicesResp)
	if !ok {
		return errorResult("Unable to fetch device list from cnMaestro. The API may be temporarily busy or unreachable."), nil
	}

	var link map[string]any
	for _, l := range links {
		if name, _ := l["name"].(string); name == linkName {
			link = l
			break
		}
	}
	if link == nil {
		return errorResult(fmt.Sprintf("Link '%s' not found in network '%s'.", linkName, networkID)), nil
	}

	aMAC := cnmaestro.NodeMAC(strings.ToLower(stringField(link, "a_node_mac")))
	zMAC := cnmaestro.NodeMAC(strings.ToLower(stringField(link, "z_node_mac")))
	aName := stringField(link, "a_node_name")
	zName := stringField(link, "z_node_name")

	aDev := deviceByMAC(devices, aMAC)
	zDev := deviceByMAC(devices, zMAC)
	if aDev == nil || zDev == nil {
		return errorResult("One or both devices not found."), nil
	}

	request, err := buildRequest(link, aDev, zDev)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	prediction, err := c.post(ctx, request)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	pred, ok := prediction["data"].(map[string]any)
	if !ok {
		return prediction, nil
	}

	return map[string]any{
		"name":        linkName,
		"a_node_name": aName,
		"z_node_name": zName,
		"data": []map[string]any{
			{
				"name":                  linkName,
				"network":               networkID,
				"a_node_name":           aName,
				"z_node_name":           zName,
				"direction":             zName + " to " + aName,
				"predicted_rssi":        pred["sm_receive_level_dbm"],
				"predicted_rx_mcs":      MCSIndex(stringValue(pred["sm_rx_max_usable_mode"])),
				"predicted_fade_margin": pred["link_fade_margin_max_usable_mode_sm"],
			},
			{
				"name":                  linkName,
				"network":               networkID,
				"a_node_name":           aName,
				"z_node_name":           zName,
				"direction":             aName + " to " + zName,
				"predicted_rssi":        pred["ap_receive_level_dbm"],
				"predicted_rx_mcs":      MCSIndex(stringValue(pred["ap_rx_max_usable_mode"])),
				"predicted_fade_margin": pred["link_fade_margin_max_usable_mode_ap"],
			},
		},
	}, nil
}

func buildRequest(link, aDev, zDev map[string]any) (map[string]any, error) {
	aHW := stringField(aDev, "hardware_version")
	zHW := stringField(zDev, "hardware_version")

	aAntenna, aOK := antennaFor(aHW, variantFor(aHW))
	zAntenna, zOK := antennaFor(zHW, variantFor(zHW))
	if !aOK || !zOK {
		return nil, fmt.Errorf("no antenna profile for hardware %q / %q", aHW, zHW)
	}

	aLat, aLon, err := coordinates(aDev)
	if err != nil {
		return nil, err
	}
	zLat, zLon, err := coordinates(zDev)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"sm": map[string]any{
			"name":            stringField(link, "a_node_name"),
			"latitude":        aLat,
			"longitude":       aLon,
			"is_network_site": false,
			"maximum_height":  100,
			"sm": map[string]any{
				"name":        "",
				"description": "",
				"mac":         stringField(aDev, "mac"),
				"ap_mac":      stringField(zDev, "mac"),
				"equipment": map[string]any{
					"band":    "60 GHz",
					"product": aHW,
				},
				"antenna": map[string]any{
					"id":     aAntenna.ID,
					"height": 100,
				},
			},
		},
		"ap": map[string]any{
			"name":            stringField(link, "z_node_name"),
			"latitude":        zLat,
			"longitude":       zLon,
			"maximum_height":  100,
			"is_network_site": true,
			"ap_list": []map[string]any{
				{
					"mac": stringField(zDev, "mac"),
					"radios": []map[string]any{
						{
							"equipment": map[string]any{
								"band":        "60 GHz",
								"product":     zHW,
								"range_units": "kilometers",
								"sm_range":    1,
							},
							"antennas": []map[string]any{
								{
									"id":        zAntenna.ID,
									"azimuth":   numberField(zDev, "azimuth"),
									"height":    100,
									"beamwidth": zAntenna.Beamwidth,
								},
							},
						},
					},
				},
			},
		},
	}, nil
}

func (c *Client) post(ctx context.Context, body map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?secret="+c.secret, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("link planner request: %w", err)
	}
	defer resp.Body.Close()

	var prediction map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("link planner response: %w", err)
	}
	return prediction, nil
}

// MCSIndex extracts the numeric MCS index from a mode string like
// "MCS12 (16QAM 0.75 Sngl)". Unparseable input comes back verbatim.
func MCSIndex(mode string) any {
	fields := strings.Fields(mode)
	if len(fields) == 0 {
		return mode
	}

	index, err := strconv.Atoi(strings.TrimPrefix(fields[0], "MCS"))
	if err != nil {
		return mode
	}
	return index
}

func variantFor(hardware string) string {
	if strings.EqualFold(hardware, "V3000") {
		return "high_gain"
	}
	return "default"
}

func deviceByMAC(devices []map[string]any, mac string) map[string]any {
	for _, device := range devices {
		if strings.EqualFold(stringField(device, "mac"), mac) {
			return device
		}
	}
	return nil
}

// coordinates returns (latitude, longitude) from a device's GeoJSON-style
// location, which stores [longitude, latitude].
func coordinates(device map[string]any) (float64, float64, error) {
	location, _ := device["location"].(map[string]any)
	coords, _ := location["coordinates"].([]any)
	if len(coords) < 2 {
		return 0, 0, fmt.Errorf("device %q has no coordinates", stringField(device, "name"))
	}

	lon, lonOK := coords[0].(float64)
	lat, latOK := coords[1].(float64)
	if !lonOK || !latOK {
		return 0, 0, fmt.Errorf("device %q has malformed coordinates", stringField(device, "name"))
	}
	return lat, lon, nil
}

func stringField(m map[string]any, key string) string {
	value, _ := m[key].(string)
	return value
}

func stringValue(v any) string {
	value, _ := v.(string)
	return value
}

func numberField(m map[string]any, key string) float64 {
	value, _ := m[key].(float64)
	return value
}

func dataList(payload map[string]any) ([]map[string]any, bool) {
	raw, ok := payload["data"].([]any)
	if !ok {
		return nil, false
	}

	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items, true
}

func errorResult(message string) map[string]any {
	return map[string]any{"status": "error", "message": message}
}
