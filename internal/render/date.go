package render

import (
	"fmt"
	"math"
	"time"
)

// FormatRelative renders t relative to now: "today", "yesterday" and
// "N days ago" below 30 whole days, an absolute "Jan 2, 2006" date after.
// A nil t renders empty. Future timestamps count as today.
func FormatRelative(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}

	days := int(math.Floor(now.Sub(*t).Hours() / 24))
	if days < 30 {
		switch {
		case days <= 0:
			return "today"
		case days == 1:
			return "yesterday"
		default:
			return fmt.Sprintf("%d days ago", days)
		}
	}

	return t.In(now.Location()).Format("Jan 2, 2006")
}
