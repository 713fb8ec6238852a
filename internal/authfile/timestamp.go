package authfile

import "time"

const (
	isoSeconds = "2006-01-02T15:04:05"
	isoOffset  = "-07:00"
)

// FormatTimestamp renders t the way the proxy writes its own auth files:
// local wall time, microsecond precision only when non-zero, and a ±HH:MM
// offset (never "Z").
func FormatTimestamp(t time.Time) string {
	t = t.Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(isoSeconds + isoOffset)
	}
	return t.Format(isoSeconds + ".000000" + isoOffset)
}
