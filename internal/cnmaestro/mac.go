package cnmaestro

import "strings"

// NodeMAC converts a wireless interface MAC to the node MAC the API keys
// devices by. The radio interfaces share the node MAC with a rewritten
// first octet: 12 and 22 map back to 00, 42 maps back to 30. Anything that
// does not look like a MAC is returned unchanged.
func NodeMAC(wirelessMAC string) string {
	normalized := strings.ReplaceAll(strings.ToLower(wirelessMAC), "-", ":")
	parts := strings.Split(normalized, ":")
	if len(parts) != 6 {
		return wirelessMAC
	}

	switch parts[0] {
	case "12", "22":
		parts[0] = "00"
	case "42":
		parts[0] = "30"
	}

	return strings.Join(parts, ":")
}
