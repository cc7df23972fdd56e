package cnmaestro

import "testing"

func TestNodeMAC(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12:04:56:aa:bb:cc", "00:04:56:aa:bb:cc"},
		{"22:04:56:aa:bb:cc", "00:04:56:aa:bb:cc"},
		{"42:04:56:aa:bb:cc", "30:04:56:aa:bb:cc"},
		{"00:04:56:aa:bb:cc", "00:04:56:aa:bb:cc"},
		{"12-04-56-AA-BB-CC", "00:04:56:aa:bb:cc"},
		{"5E:04:56:AA:BB:CC", "5e:04:56:aa:bb:cc"},
		{"not-a-mac", "not-a-mac"},
		{"12:04:56:aa:bb", "12:04:56:aa:bb"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NodeMAC(tc.in); got != tc.want {
			t.Errorf("NodeMAC(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
