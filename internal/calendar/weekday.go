package calendar

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayIndex classifies t as 0=Sunday..6=Saturday.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday())
}

// WeekdayName returns the short lowercase key used for per-weekday flags.
func WeekdayName(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return ""
	}
	return weekdayNames[d]
}

// ParseWeekday accepts a short key ("mon") or an English day name ("Monday").
func ParseWeekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) >= 3 {
		for i, name := range weekdayNames {
			if strings.HasPrefix(v, name) && strings.HasPrefix(strings.ToLower(time.Weekday(i).String()), v) {
				return time.Weekday(i), nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("calendar: unknown weekday %q", value)
}

// IsWeekend reports Saturday and Sunday.
func IsWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}
