package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// The work week runs Sunday through Friday; Saturday is never scheduled.
var weekdayIndex = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
}

// DayIndex maps a weekday name to its position in the six-day work week.
func DayIndex(name string) (int, bool) {
	idx, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(name))]
	return idx, ok
}

// parseClock converts "HH:MM" into minutes from midnight.
func parseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// workingWindow returns the open and close instants for the date, or
// ok=false when the date falls on a non-working day.
func (s Settings) workingWindow(date time.Time) (time.Time, time.Time, bool) {
	var opens, closes string
	switch date.Weekday() {
	case time.Saturday:
		return time.Time{}, time.Time{}, false
	case time.Friday:
		opens, closes = s.FridayStart, s.FridayEnd
	default:
		opens, closes = s.WeekdayStart, s.WeekdayEnd
	}
	openMin, err := parseClock(opens)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeMin, err := parseClock(closes)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(time.Duration(openMin) * time.Minute),
		midnight.Add(time.Duration(closeMin) * time.Minute), true
}

// dayKey groups placements by calendar date.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
