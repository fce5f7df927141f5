package crawler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// apiTimeLayout is the long form the feed API uses for created_at
const apiTimeLayout = time.RubyDate

// NormalizeDate maps a created_at string to a zero padded YYYY-MM-DD date.
//
// Accepted shapes:
//   - "Mon Jan 02 15:04:05 -0700 2006": the calendar date in its own zone
//   - Y-M-D or M-D-Y: reordered and padded
//   - M-D: the current UTC year is prepended
//   - a single token without dashes ("刚刚", "5分钟前"): yesterday in UTC
//
// Anything else reports ok=false.
func NormalizeDate(raw string, now time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(apiTimeLayout, raw); err == nil {
		return t.Format("2006-01-02"), true
	}

	var parts []string
	for _, p := range strings.Split(raw, "-") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 3:
		last := strings.Fields(parts[2])[0] // drop a trailing time of day
		switch {
		case len(parts[0]) == 4:
			return formatDate(parts[0], parts[1], last)
		case len(last) == 4:
			return formatDate(last, parts[0], parts[1])
		default:
			return "", false
		}
	case 2:
		day := strings.Fields(parts[1])[0]
		return formatDate(strconv.Itoa(now.UTC().Year()), parts[0], day)
	case 1:
		return now.UTC().AddDate(0, 0, -1).Format("2006-01-02"), true
	default:
		return "", false
	}
}

func formatDate(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1000 || y > 9999 {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}
