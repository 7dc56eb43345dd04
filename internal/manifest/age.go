package manifest

import (
	"fmt"
	"time"
)

// FormatAge renders how long ago created was, relative to now.
func FormatAge(created, now time.Time) string {
	diff := now.Sub(created)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return created.Format("Jan 2, 2006")
	}
}
