package printer

import (
	"fmt"
	"time"
)

// TimeAgo renders t as a coarse relative duration anchored to UTC, e.g.
// "30 seconds ago (UTC)" or "2 days ago (UTC)".
func TimeAgo(t time.Time) string {
	diff := time.Now().UTC().Sub(t.UTC())
	if diff < 0 {
		return "in the future (UTC)"
	}

	units := []struct {
		below time.Duration
		size  time.Duration
		name  string
	}{
		{below: time.Minute, size: time.Second, name: "second"},
		{below: time.Hour, size: time.Minute, name: "minute"},
		{below: 24 * time.Hour, size: time.Hour, name: "hour"},
	}

	for _, u := range units {
		if diff < u.below {
			return relative(int(diff/u.size), u.name)
		}
	}

	return relative(int(diff/(24*time.Hour)), "day")
}

func relative(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago (UTC)", unit)
	}
	return fmt.Sprintf("%d %ss ago (UTC)", n, unit)
}

// FormatTimestamp renders t as an absolute UTC timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
