package attendance

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/cell"
)

var (
	// 2024/03/05 09:00
	slashDateTime = regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2} \d{1,2}:\d{2}$`)
	// 2024-03-05 09:00
	dashDateTime = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2} \d{1,2}:\d{2}$`)
	// 09:00
	clockTime = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	// 8시, 8h
	hourWithUnit = regexp.MustCompile(`^(\d{1,2})\s*(시|h)$`)
	// 8
	bareHour = regexp.MustCompile(`^\d{1,2}$`)
)

// serialEpoch is day zero of the spreadsheet serial-date convention.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31; larger magnitudes cannot be real timestamps.
const maxSerial = 2958465

// ParseTimeValue normalizes one raw check-in or check-out cell.
//
// A nil result with wellFormed true means the cell was absent. A non-nil
// result with wellFormed false means the value was usable but written in a
// format that should be flagged. Values without a date part are placed on
// SentinelDate.
func ParseTimeValue(v cell.Value) (ts *time.Time, wellFormed bool) {
	switch v.Kind {
	case cell.KindEmpty:
		return nil, true
	case cell.KindTime:
		t := v.Time
		return &t, true
	case cell.KindNumber:
		if t, ok := fromSerial(v.Num); ok {
			return &t, true
		}
		return parseTimeText(strconv.FormatFloat(v.Num, 'f', -1, 64))
	default:
		return parseTimeText(v.Text)
	}
}

func parseTimeText(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}

	switch {
	case slashDateTime.MatchString(s):
		return parseLayout("2006/1/2 15:04", s)
	case dashDateTime.MatchString(s):
		return parseLayout("2006-1-2 15:04", s)
	}

	if m := clockTime.FindStringSubmatch(s); m != nil {
		t, ok := onSentinel(m[1], m[2])
		return t, ok
	}

	if m := hourWithUnit.FindStringSubmatch(strings.ToLower(s)); m != nil {
		t, _ := onSentinel(m[1], "0")
		return t, false
	}

	if bareHour.MatchString(s) {
		t, _ := onSentinel(s, "0")
		return t, false
	}

	return nil, false
}

func parseLayout(layout, s string) (*time.Time, bool) {
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// onSentinel builds a timestamp on SentinelDate. The returned bool is false
// when hour or minute is out of range, in which case the timestamp is nil.
func onSentinel(hourStr, minStr string) (*time.Time, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return nil, false
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil || minute < 0 || minute > 59 {
		return nil, false
	}
	t := time.Date(SentinelDate.Year(), SentinelDate.Month(), SentinelDate.Day(), hour, minute, 0, 0, time.UTC)
	return &t, true
}

// fromSerial converts a serial day count (fraction = time of day) to a
// timestamp rounded to the second.
func fromSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxSerial {
		return time.Time{}, false
	}
	days := math.Floor(f)
	secs := math.Round((f - days) * 24 * 60 * 60)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), true
}
