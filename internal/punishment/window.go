// AngelaMos | 2026
// window.go

package punishment

import (
	"time"
)

// WeekWindow returns [Monday 00:00, next Monday 00:00) in loc around now.
func WeekWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)

	offset := (int(local.Weekday()) + 6) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)

	return start, start.AddDate(0, 0, 7)
}
