// Package mapgen renders a network's sites, devices and links to a
// self-contained Leaflet HTML map the user can open in a browser.
package mapgen

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/netwave-ai/netwave/internal/cnmaestro"
)

// Maestro is the slice of the cnMaestro client the generator needs.
type Maestro interface {
	Sites(ctx context.Context, networkID string) (map[string]any, error)
	Devices(ctx context.Context, query cnmaestro.DeviceQuery) (map[string]any, error)
	Links(ctx context.Context, networkID, fields string) (map[string]any, error)
}

type Generator struct {
	OutputDir string
	BaseURL   string
	Maestro   Maestro
}

type marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Name  string  `json:"name"`
	Model string  `json:"model"`
}

type line struct {
	ALat  float64 `json:"a_lat"`
	ALon  float64 `json:"a_lon"`
	ZLat  float64 `json:"z_lat"`
	ZLon  float64 `json:"z_lon"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
}

// Create fetches the network's sites, devices and links and writes the map
// file. The returned payload carries the file path and URL for the model to
// hand back to the user.
func (g *Generator) Create(ctx context.Context, networkID string) (map[string]any, error) {
	sitesResp, err := g.Maestro.Sites(ctx, networkID)
	if err != nil {
		return nil, err
	}
	devicesResp, err := g.Maestro.Devices(ctx, cnmaestro.DeviceQuery{Network: networkID})
	if err != nil {
		return nil, err
	}
	linksResp, err := g.Maestro.Links(ctx, networkID, "")
	if err != nil {
		return nil, err
	}

	sites, sitesOK := dataList(sitesResp)
	nodes, nodesOK := dataList(devicesResp)
	links, linksOK := dataList(linksResp)
	if !sitesOK || !nodesOK || !linksOK || len(sites) == 0 {
		return map[string]any{
			"error": fmt.Sprintf("Unable to generate map for '%s': one or more API responses were malformed or incomplete.", networkID),
		}, nil
	}

	markers, lines := buildLayers(sites, nodes, links)

	fileName := fmt.Sprintf("visual_map_%s.html", networkID)
	filePath := filepath.Join(g.OutputDir, fileName)
	if err := g.render(filePath, markers, lines); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	fileURL := strings.TrimSuffix(g.BaseURL, "/") + "/" + fileName
	return map[string]any{
		"map_name":  fileName,
		"file_path": absPath,
		"file_url":  fileURL,
		"message":   fmt.Sprintf("Visual map for '%s' saved at: [View Map](%s)", networkID, fileURL),
	}, nil
}

func buildLayers(sites, nodes, links []map[string]any) ([]marker, []line) {
	siteCoords := make(map[string][2]float64)
	for _, site := range sites {
		name, _ := site["name"].(string)
		if lat, lon, ok := siteLocation(site); ok && name != "" {
			siteCoords[name] = [2]float64{lat, lon}
		}
	}

	nodeSites := make(map[string]string)
	var markers []marker
	for _, node := range nodes {
		name, _ := node["name"].(string)
		siteName, _ := node["site"].(string)
		coords, ok := siteCoords[siteName]
		if !ok || name == "" {
			continue
		}
		nodeSites[name] = siteName

		hardware, _ := node["hardware_version"].(string)
		markers = append(markers, marker{
			Lat:   coords[0],
			Lon:   coords[1],
			Name:  name,
			Model: hardwareModel(hardware),
		})
	}

	var lines []line
	for _, link := range links {
		aName, _ := link["a_node_name"].(string)
		zName, _ := link["z_node_name"].(string)
		aCoords, aOK := siteCoords[nodeSites[aName]]
		zCoords, zOK := siteCoords[nodeSites[zName]]
		if !aOK || !zOK {
			continue
		}

		status, _ := link["status"].(string)
		color := "red"
		if strings.EqualFold(status, "online") {
			color = "green"
		}

		name, _ := link["name"].(string)
		lines = append(lines, line{
			ALat: aCoords[0], ALon: aCoords[1],
			ZLat: zCoords[0], ZLon: zCoords[1],
			Name: name, Color: color,
		})
	}

	return markers, lines
}

func hardwareModel(hardwareVersion string) string {
	version := strings.ToUpper(hardwareVersion)
	for _, model := range []string{"V5000", "V3000", "V2000", "V1000"} {
		if strings.Contains(version, model) {
			return model
		}
	}
	return "OTHER"
}

func siteLocation(site map[string]any) (float64, float64, bool) {
	location, _ := site["location"].(map[string]any)
	coords, _ := location["coordinates"].([]any)
	if len(coords) < 2 {
		return 0, 0, false
	}

	lon, lonOK := coords[0].(float64)
	lat, latOK := coords[1].(float64)
	return lat, lon, lonOK && latOK
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>Network Map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
const markers = {{.Markers}};
const lines = {{.Lines}};
const map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {maxZoom: 19}).addTo(map);
for (const m of markers) {
  L.marker([m.lat, m.lon]).addTo(map).bindPopup(m.name + ' (' + m.model + ')');
}
for (const l of lines) {
  L.polyline([[l.a_lat, l.a_lon], [l.z_lat, l.z_lon]], {color: l.color}).addTo(map).bindPopup(l.name);
}
if (markers.length > 0) {
  map.fitBounds(markers.map(m => [m.lat, m.lon]), {maxZoom: 18});
} else {
  map.setView([0, 0], 2);
}
</script>
</body>
</html>
`))

func (g *Generator) render(path string, markers []marker, lines []line) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create maps dir: %w", err)
	}

	markersJSON, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	defer file.Close()

	return mapTemplate.Execute(file, map[string]template.JS{
		"Markers": template.JS(markersJSON),
		"Lines":   template.JS(linesJSON),
	})
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
