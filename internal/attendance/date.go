package attendance

import (
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/cell"
)

// SentinelDate is the date given to time-only values such as "09:00".
var SentinelDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDateValue reads the raw date column of a swipe row.
func ParseDateValue(v cell.Value) (time.Time, bool) {
	switch v.Kind {
	case cell.KindTime:
		return Day(v.Time), true
	case cell.KindNumber:
		t, ok := fromSerial(v.Num)
		if !ok {
			return time.Time{}, false
		}
		return Day(t), true
	case cell.KindText:
		s := strings.TrimSpace(v.Text)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return Day(t), true
			}
		}
	}
	return time.Time{}, false
}

// HasCalendarDate reports whether t carries a real date rather than the
// sentinel or serial-epoch date given to time-only values.
func HasCalendarDate(t time.Time) bool {
	d := Day(t)
	return !d.Equal(SentinelDate) && d.After(serialEpoch)
}
