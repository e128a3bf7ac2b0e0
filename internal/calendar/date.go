package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a date expression relative to the current day.
func ParseDate(s string) (time.Time, error) {
	return parseDate(s, time.Now())
}

// parseDate parses a date expression relative to now. Dates resolve to UTC
// midnight. Supports: "today", "yesterday", "monday", "last tuesday",
// "on Monday", "2024-01-15", "2024/01/15", "2024.01.15", "20240115",
// "Jan 2", "Jan 2 2006", "2 Jan", "2 January 2006".
// Bare weekday names look backwards, since attendance is always in the past.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "on "))

	switch s {
	case "today":
		return truncateToDay(now), nil
	case "yesterday":
		return truncateToDay(now).AddDate(0, 0, -1), nil
	}

	cleaned := strings.TrimPrefix(s, "last ")
	if wd, ok := parseWeekday(cleaned); ok {
		return previousWeekday(now, wd), nil
	}

	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"2006.01.02",
		"20060102",
		"2006-1-2",
		"Jan 2",
		"Jan 2 2006",
		"January 2",
		"January 2 2006",
		"2 Jan",
		"2 Jan 2006",
		"2 January",
		"2 January 2006",
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			if !hasYear(layout) {
				t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdays[s]
	return wd, ok
}

// previousWeekday returns the last occurrence of wd before now.
// If now is that weekday, it returns the previous week.
func previousWeekday(now time.Time, wd time.Weekday) time.Time {
	today := truncateToDay(now)
	daysBack := int(today.Weekday()) - int(wd)
	if daysBack <= 0 {
		daysBack += 7
	}
	return today.AddDate(0, 0, -daysBack)
}

func hasYear(layout string) bool {
	return strings.Contains(layout, "2006")
}
