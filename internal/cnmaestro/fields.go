package cnmaestro

import (
	"sort"
	"strings"
)

// Field normalization for the statistics endpoints. The platform rejects a
// few documented-looking field names and the model tends to use shorthand,
// so the fields query is rewritten before it goes on the wire:
// shorthand aliases map to canonical names, unsupported fields are stripped,
// and the link endpoint names are always included.
var (
	invalidStatisticsFields = map[string]struct{}{
		"tx_rssi": {},
		"rx_rssi": {},
		"tx_snr":  {},
	}

	statisticsFieldAliases = map[string]string{
		"mcs": "rx_mcs",
		"snr": "rx_snr",
	}

	forcedStatisticsFields = []string{"a_node_name", "z_node_name"}
)

// applyFieldsParam appends a normalized fields query parameter to endpoint.
// An empty fields string leaves the endpoint untouched.
func applyFieldsParam(endpoint, fields string) string {
	if fields == "" {
		return endpoint
	}

	fieldSet := make(map[string]struct{})
	for _, field := range strings.Split(fields, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if canonical, ok := statisticsFieldAliases[field]; ok {
			field = canonical
		}
		if _, bad := invalidStatisticsFields[field]; bad {
			continue
		}
		fieldSet[field] = struct{}{}
	}

	for _, field := range forcedStatisticsFields {
		fieldSet[field] = struct{}{}
	}

	finalFields := make([]string, 0, len(fieldSet))
	for field := range fieldSet {
		finalFields = append(finalFields, field)
	}
	sort.Strings(finalFields)

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + "fields=" + strings.Join(finalFields, ",")
}
