package tools

import (
	"context"

	"github.com/netwave-ai/netwave/internal/cnmaestro"
	"github.com/netwave-ai/netwave/internal/session"
)

// MaestroInventory adapts the cnMaestro client to the session cache loader,
// fetching only the name and MAC fields.
type MaestroInventory struct {
	Maestro MaestroAPI
}

func (m MaestroInventory) NodeMACs(ctx context.Context, networkID string) (map[string]string, error) {
	resp, err := m.Maestro.Devices(ctx, cnmaestro.DeviceQuery{Network: networkID, Fields: "name,mac"})
	if err != nil {
		return nil, err
	}

	macs := make(map[string]string)
	for _, device := range dataItems(resp) {
		name, _ := device["name"].(string)
		mac, _ := device["mac"].(string)
		if name != "" && mac != "" {
			macs[name] = mac
		}
	}
	return macs, nil
}

func (m MaestroInventory) LinkMACs(ctx context.Context, networkID string) (map[string]session.LinkEndpoints, error) {
	resp, err := m.Maestro.Links(ctx, networkID, "name,a_node_mac,z_node_mac")
	if err != nil {
		return nil, err
	}

	endpoints := make(map[string]session.LinkEndpoints)
	for _, link := range dataItems(resp) {
		name, _ := link["name"].(string)
		aMAC, _ := link["a_node_mac"].(string)
		zMAC, _ := link["z_node_mac"].(string)
		if name != "" {
			endpoints[name] = session.LinkEndpoints{ANodeMAC: aMAC, ZNodeMAC: zMAC}
		}
	}
	return endpoints, nil
}

func dataItems(payload map[string]any) []map[string]any {
	raw, _ := payload["data"].([]any)

	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}
