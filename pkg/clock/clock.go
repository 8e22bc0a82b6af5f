// Package clock handles wall-clock times of day ("HH:MM:SS") and weekday names used by the timetable.
package clock

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names in canonical display order. Sunday sorts last.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WorkWeek lists the days always present in a weekly grid.
var WorkWeek = weekdays[:6]

// Weekdays returns all seven day names, Monday first.
func Weekdays() []string {
	out := make([]string, len(weekdays))
	copy(out, weekdays)
	return out
}

// TimeOfDay is a number of seconds since midnight.
type TimeOfDay int

// Parse accepts "HH:MM" or "HH:MM:SS".
func Parse(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// HoursBetween returns end-start in fractional hours; malformed or inverted ranges yield 0.
func HoursBetween(start, end string) float64 {
	s, err := Parse(start)
	if err != nil {
		return 0
	}
	e, err := Parse(end)
	if err != nil || e <= s {
		return 0
	}
	return float64(e-s) / 3600
}

// Compare orders two HH:MM:SS strings; unparsable values fall back to lexical order.
func Compare(a, b string) int {
	ta, errA := Parse(a)
	tb, errB := Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	}
	return 0
}

// NormalizeDay maps any casing of a full weekday name to its canonical form.
func NormalizeDay(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, day := range weekdays {
		if strings.EqualFold(day, raw) {
			return day, true
		}
	}
	return "", false
}

// DayRank returns the canonical position of a weekday (Monday=1 through Sunday=7); unknown names rank last.
func DayRank(day string) int {
	for i, d := range weekdays {
		if d == day {
			return i + 1
		}
	}
	return len(weekdays) + 1
}

// DayOf returns the English weekday name of a date.
func DayOf(date time.Time) string {
	return date.Weekday().String()
}

// WeekBounds returns the Monday and Saturday of the week containing date.
func WeekBounds(date time.Time) (time.Time, time.Time) {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 5)
}

// DateOf returns the calendar date of day within the week starting at monday.
func DateOf(monday time.Time, day string) time.Time {
	return monday.AddDate(0, 0, DayRank(day)-1)
}
