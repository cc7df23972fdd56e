package cnmaestro

import (
	"context"
	"fmt"
	"strings"
)

var platformBuckets = []string{"V5000", "V3000", "V2000", "V1000"}

// NetworkCounts reports live totals for a network: nodes broken out by
// online state, DN/CN role and hardware platform, and links broken out by
// status. Results are never cached; every call hits the inventory endpoints.
func (c *Client) NetworkCounts(ctx context.Context, networkID string) (map[string]any, error) {
	deviceResp, err := c.Devices(ctx, DeviceQuery{Network: networkID})
	if err != nil {
		return nil, err
	}
	nodes, ok := dataList(deviceResp)
	if !ok {
		return errorResult("Unable to retrieve devices"), nil
	}

	nodeCounts := map[string]any{
		"total": len(nodes), "online": 0, "offline": 0,
		"DN": 0, "CN": 0,
		"V5000": 0, "V3000": 0, "V2000": 0, "V1000": 0,
	}

	for _, node := range nodes {
		if online, _ := node["online"].(bool); online {
			nodeCounts["online"] = nodeCounts["online"].(int) + 1
		} else {
			nodeCounts["offline"] = nodeCounts["offline"].(int) + 1
		}

		mode, _ := node["mode"].(string)
		mode = strings.ToUpper(mode)
		if mode == "DN" || mode == "CN" {
			nodeCounts[mode] = nodeCounts[mode].(int) + 1
		}

		hardware, _ := node["hardware_version"].(string)
		hardware = strings.ToUpper(hardware)
		for _, platform := range platformBuckets {
			if strings.Contains(hardware, platform) {
				nodeCounts[platform] = nodeCounts[platform].(int) + 1
				break
			}
		}
	}

	linkResp, err := c.Links(ctx, networkID, "")
	if err != nil {
		return nil, err
	}
	links, ok := dataList(linkResp)
	if !ok {
		return errorResult("Unable to retrieve links"), nil
	}

	online := 0
	for _, link := range links {
		status, _ := link["status"].(string)
		if strings.EqualFold(status, "online") {
			online++
		}
	}

	linkCounts := map[string]any{
		"total":   len(links),
		"online":  online,
		"offline": len(links) - online,
	}

	return map[string]any{"nodes": nodeCounts, "links": linkCounts}, nil
}

// MacForNode resolves a device name to its node MAC via a fresh inventory
// fetch.
func (c *Client) MacForNode(ctx context.Context, networkID, nodeName string) (map[string]any, error) {
	resp, err := c.Devices(ctx, DeviceQuery{Network: networkID})
	if err != nil {
		return nil, err
	}
	devices, ok := dataList(resp)
	if !ok {
		return errorResult("Unable to fetch devices"), nil
	}

	for _, device := range devices {
		if name, _ := device["name"].(string); name == nodeName {
			return map[string]any{"mac": device["mac"]}, nil
		}
	}

	return errorResult(fmt.Sprintf("Device '%s' not found", nodeName)), nil
}

// MacsForLink resolves a link name to the MACs and names of both endpoints.
func (c *Client) MacsForLink(ctx context.Context, networkID, linkName string) (map[string]any, error) {
	resp, err := c.Links(ctx, networkID, "")
	if err != nil {
		return nil, err
	}
	links, ok := dataList(resp)
	if !ok {
		return errorResult("Unable to fetch links"), nil
	}

	for _, link := range links {
		if name, _ := link["name"].(string); name == linkName {
			return map[string]any{
				"a_node_mac":  link["a_node_mac"],
				"a_node_name": link["a_node_name"],
				"z_node_mac":  link["z_node_mac"],
				"z_node_name": link["z_node_name"],
			}, nil
		}
	}

	return errorResult(fmt.Sprintf("Link '%s' not found", linkName)), nil
}

// dataList extracts the "data" array of objects from an API payload.
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
