package cnmaestro

import "testing"

func TestApplyFieldsParam(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
		fields   string
		want     string
	}{
		{
			name:     "empty fields leaves endpoint alone",
			endpoint: "cnwave60/networks/n1/links/statistics",
			fields:   "",
			want:     "cnwave60/networks/n1/links/statistics",
		},
		{
			name:     "aliases map to canonical names",
			endpoint: "stats",
			fields:   "mcs,snr",
			want:     "stats?fields=a_node_name,rx_mcs,rx_snr,z_node_name",
		},
		{
			name:     "unsupported fields are stripped",
			endpoint: "stats",
			fields:   "tx_rssi,rx_rssi,tx_snr,rx_snr",
			want:     "stats?fields=a_node_name,rx_snr,z_node_name",
		},
		{
			name:     "endpoint names always included and deduplicated",
			endpoint: "stats",
			fields:   "a_node_name,rx_mcs",
			want:     "stats?fields=a_node_name,rx_mcs,z_node_name",
		},
		{
			name:     "whitespace and empty entries tolerated",
			endpoint: "stats",
			fields:   " rx_mcs , ,rx_snr",
			want:     "stats?fields=a_node_name,rx_mcs,rx_snr,z_node_name",
		},
		{
			name:     "appends with ampersand when a query exists",
			endpoint: "stats?limit=5",
			fields:   "rx_mcs",
			want:     "stats?limit=5&fields=a_node_name,rx_mcs,z_node_name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := applyFieldsParam(tc.endpoint, tc.fields); got != tc.want {
				t.Errorf("applyFieldsParam(%q, %q) = %q, want %q", tc.endpoint, tc.fields, got, tc.want)
			}
		})
	}
}
