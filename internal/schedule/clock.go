package schedule

import (
	"fmt"
	"time"
)

// ParseClock converts a "15:04" time-of-day into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "15:04".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// composeISO builds the committed timestamp from a schedule date and time.
func composeISO(date, clock string) string {
	return date + "T" + clock + ":00"
}
