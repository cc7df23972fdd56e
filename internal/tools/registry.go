package tools

import (
	"context"
	"encoding/json"

	"github.com/netwave-ai/netwave/internal/cnmaestro"
	"github.com/netwave-ai/netwave/internal/session"
)

// MaestroAPI is the slice of the cnMaestro client the registry dispatches
// to.
type MaestroAPI interface {
	Networks(ctx context.Context) (map[string]any, error)
	Devices(ctx context.Context, query cnmaestro.DeviceQuery) (map[string]any, error)
	Sites(ctx context.Context, networkID string) (map[string]any, error)
	Site(ctx context.Context, networkID, siteID string) (map[string]any, error)
	Links(ctx context.Context, networkID, fields string) (map[string]any, error)
	NetworkLinkStatistics(ctx context.Context, networkID, limit, offset, fields string) (map[string]any, error)
	DeviceLinkStatistics(ctx context.Context, mac, fields string) (map[string]any, error)
	SingleLinkStatistics(ctx context.Context, mac, linkName, fields string) (map[string]any, error)
	DeviceLinkPerformance(ctx context.Context, mac, linkName, startTime, stopTime string) (map[string]any, error)
	DeviceOverrides(ctx context.Context, networkID, name string) (map[string]any, error)
	ControllerInfo(ctx context.Context, networkID string) (map[string]any, error)
	NetworkDeviceStatistics(ctx context.Context, networkID, limit, offset, fields string) (map[string]any, error)
	DeviceStatistics(ctx context.Context, mac, fields string) (map[string]any, error)
	NetworkCounts(ctx context.Context, networkID string) (map[string]any, error)
	MacForNode(ctx context.Context, networkID, nodeName string) (map[string]any, error)
	MacsForLink(ctx context.Context, networkID, linkName string) (map[string]any, error)
}

type WeatherAPI interface {
	Precipitation(ctx context.Context, latitude, longitude float64, startDate, endDate string) (map[string]any, error)
}

type PlannerAPI interface {
	Predict(ctx context.Context, networkID, linkName string) (map[string]any, error)
}

type MapAPI interface {
	Create(ctx context.Context, networkID string) (map[string]any, error)
}

// Deps carries every external collaborator the tool registry binds to.
type Deps struct {
	Maestro MaestroAPI
	Weather WeatherAPI
	Planner PlannerAPI
	Maps    MapAPI
	State   *session.State
	UTCNow  func() string
}

// Per-tool argument records. The model sends untyped JSON; each record pins
// the fields a tool accepts, with required-ness enforced at registration.
type networkArgs struct {
	NetworkID string `json:"network_id"`
}

type deviceListArgs struct {
	Network string `json:"network"`
	Limit   string `json:"limit"`
	Offset  string `json:"offset"`
	Type    string `json:"type"`
	Online  *bool  `json:"online"`
	Sort    string `json:"sort"`
	Site    string `json:"site"`
	Fields  string `json:"fields"`
}

type siteArgs struct {
	NetworkID string `json:"network_id"`
	SiteID    string `json:"site_id"`
}

type linkListArgs struct {
	NetworkID string `json:"network_id"`
	Fields    string `json:"fields"`
}

type linkStatisticsArgs struct {
	NetworkID string `json:"network_id"`
	Limit     string `json:"limit"`
	Offset    string `json:"offset"`
	Fields    string `json:"fields"`
}

type deviceMACArgs struct {
	MAC    string `json:"mac"`
	Fields string `json:"fields"`
}

type deviceLinkArgs struct {
	MAC      string `json:"mac"`
	LinkName string `json:"link_name"`
	Fields   string `json:"fields"`
}

type performanceArgs struct {
	MAC       string `json:"mac"`
	LinkName  string `json:"link_name"`
	StartTime string `json:"start_time"`
	StopTime  string `json:"stop_time"`
}

type overridesArgs struct {
	NetworkID string `json:"network_id"`
	Name      string `json:"name"`
}

type nodeLookupArgs struct {
	NetworkID string `json:"network_id"`
	NodeName  string `json:"node_name"`
}

type linkLookupArgs struct {
	NetworkID string `json:"network_id"`
	LinkName  string `json:"link_name"`
}

type weatherArgs struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
}

// NewRegistry builds the dispatcher with every tool bound to its
// collaborator.
func NewRegistry(deps Deps) *Dispatcher {
	d := NewDispatcher()

	d.Register("get_networks", nil, func(ctx context.Context, _ map[string]any) any {
		return call(deps.Maestro.Networks(ctx))
	})

	d.Register("select_network", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[networkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		deps.State.SelectNetwork(a.NetworkID)
		return map[string]any{"status": "ok", "selected_network": a.NetworkID}
	})

	d.Register("get_network_counts", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[networkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.NetworkCounts(ctx, a.NetworkID))
	})

	d.Register("get_devices", nil, func(ctx context.Context, args map[string]any) any {
		a, err := bind[deviceListArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.Devices(ctx, cnmaestro.DeviceQuery{
			Network: a.Network, Limit: a.Limit, Offset: a.Offset, Type: a.Type,
			Online: a.Online, Sort: a.Sort, Site: a.Site, Fields: a.Fields,
		}))
	})

	d.Register("get_sites", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[networkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.Sites(ctx, a.NetworkID))
	})

	d.Register("get_site", []string{"network_id", "site_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[siteArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.Site(ctx, a.NetworkID, a.SiteID))
	})

	d.Register("get_links", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[linkListArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.Links(ctx, a.NetworkID, a.Fields))
	})

	d.Register("get_network_links_statistics", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[linkStatisticsArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.NetworkLinkStatistics(ctx, a.NetworkID, a.Limit, a.Offset, a.Fields))
	})

	d.Register("get_link_statistics_for_device", []string{"mac"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[deviceMACArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.DeviceLinkStatistics(ctx, a.MAC, a.Fields))
	})

	d.Register("get_single_link_statistics_for_device", []string{"mac", "link_name"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[deviceLinkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.SingleLinkStatistics(ctx, a.MAC, a.LinkName, a.Fields))
	})

	d.Register("get_device_link_performance", []string{"mac", "link_name"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[performanceArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.DeviceLinkPerformance(ctx, a.MAC, a.LinkName, a.StartTime, a.StopTime))
	})

	d.Register("get_device_overrides", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[overridesArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.DeviceOverrides(ctx, a.NetworkID, a.Name))
	})

	d.Register("get_controller_info", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[networkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.ControllerInfo(ctx, a.NetworkID))
	})

	d.Register("get_network_device_statistics", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[linkStatisticsArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.NetworkDeviceStatistics(ctx, a.NetworkID, a.Limit, a.Offset, a.Fields))
	})

	d.Register("get_device_statistics_by_mac", []string{"mac"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[deviceMACArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maestro.DeviceStatistics(ctx, a.MAC, a.Fields))
	})

	d.Register("get_link_planner_prediction", []string{"network_id", "link_name"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[linkLookupArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Planner.Predict(ctx, a.NetworkID, a.LinkName))
	})

	d.Register("get_weather", []string{"latitude", "longitude", "start_date", "end_date"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[weatherArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Weather.Precipitation(ctx, a.Latitude, a.Longitude, a.StartDate, a.EndDate))
	})

	d.Register("get_current_utc_time", nil, func(ctx context.Context, _ map[string]any) any {
		return deps.UTCNow()
	})

	d.Register("get_mac_for_node", []string{"network_id", "node_name"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[nodeLookupArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		if mac, ok := deps.State.NodeMAC(ctx, a.NetworkID, a.NodeName); ok {
			return map[string]any{"mac": mac}
		}
		return call(deps.Maestro.MacForNode(ctx, a.NetworkID, a.NodeName))
	})

	d.Register("get_macs_for_link", []string{"network_id", "link_name"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[linkLookupArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		if endpoints, ok := deps.State.LinkMACs(ctx, a.NetworkID, a.LinkName); ok {
			return map[string]any{
				"a_node_mac": endpoints.ANodeMAC,
				"z_node_mac": endpoints.ZNodeMAC,
			}
		}
		return call(deps.Maestro.MacsForLink(ctx, a.NetworkID, a.LinkName))
	})

	d.Register("create_visual_map", []string{"network_id"}, func(ctx context.Context, args map[string]any) any {
		a, err := bind[networkArgs](args)
		if err != nil {
			return errorResult(err.Error())
		}
		return call(deps.Maps.Create(ctx, a.NetworkID))
	})

	return d
}

// call folds a collaborator's (result, err) pair into a single value the
// model can always read.
func call(result map[string]any, err error) any {
	if err != nil {
		return errorResult(err.Error())
	}
	return result
}

// bind decodes the parsed argument map into a tool's typed argument record.
func bind[T any](args map[string]any) (T, error) {
	var out T

	data, err := json.Marshal(args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
