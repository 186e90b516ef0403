package temporal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeOfDay splits a 24-hour HH:MM string into its hour and minute.
// Both segments must be base-10 integers within range (hour 0-23,
// minute 0-59); anything else yields ErrMalformedTime.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrMalformedTime, s)
	}
	return hour, minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// WeekdayIndex maps a full or three-letter weekday name (case-insensitive)
// to its cron index, Sunday=0. Unknown names map to 0; this lenient
// fallback is kept for config compatibility. Callers wanting strict input
// should check KnownWeekday first.
func WeekdayIndex(name string) int {
	if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return int(wd)
	}
	return 0
}

// KnownWeekday reports whether name is a recognised weekday name.
func KnownWeekday(name string) bool {
	_, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ParseMonthDay parses MM-DD or YYYY-MM-DD into a month and day pair.
// The year segment, when present, is ignored.
func ParseMonthDay(s string) (time.Month, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) == 3 {
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrMalformedDate, s)
	}
	return time.Month(month), day, nil
}
