package timeutil

import "testing"

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"5s", "5s"},
		{"90s", "1m 30s"},
		{"72h30m15s", "3d 0h 30m 15s"},
		{"2h0m5s", "2h 0m 5s"},
		{"not-a-duration", "not-a-duration"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.in); got != c.want {
			t.Errorf("FormatUptime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatTimePassthrough(t *testing.T) {
	if got := FormatTime("yesterday"); got != "yesterday" {
		t.Errorf("unparseable input rewritten to %q", got)
	}
}
