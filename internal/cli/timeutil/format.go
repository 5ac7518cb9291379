// Package timeutil renders timestamps and durations for CLI tables.
package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// LocalTimeFormat is the reference layout for timestamps shown to the
// operator, always in local time.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatTime renders an RFC3339 timestamp in local time. Values that do
// not parse are shown as-is rather than hidden.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(LocalTimeFormat)
}

// FormatUptime renders a Go duration string ("72h30m15s") as
// "3d 0h 30m 15s", dropping leading units that are zero. Unparseable
// input is returned as-is.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	secs := int64(d.Seconds())
	parts := []struct {
		unit string
		n    int64
	}{
		{"d", secs / 86400},
		{"h", secs / 3600 % 24},
		{"m", secs / 60 % 60},
		{"s", secs % 60},
	}

	var b strings.Builder
	for i, p := range parts {
		if b.Len() == 0 && p.n == 0 && i < len(parts)-1 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(p.n, 10))
		b.WriteString(p.unit)
	}
	return b.String()
}
