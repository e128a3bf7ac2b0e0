package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// MaxRangeDays bounds how many dates Days will return. Longer ranges are
// rejected.
const MaxRangeDays = 366

// Days lists the dates from from to to inclusive that match every. An empty
// every means each day. Both bounds are truncated to UTC midnight.
func Days(from, to time.Time, every string) ([]time.Time, error) {
	from, to = truncateToDay(from), truncateToDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	opt, err := parseRecurrence(every)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = from
	opt.Until = to
	opt.Count = MaxRangeDays + 1

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build range: %w", err)
	}
	days := r.All()
	if len(days) > MaxRangeDays {
		return nil, fmt.Errorf("range %s to %s matches more than %d days", from.Format("2006-01-02"), to.Format("2006-01-02"), MaxRangeDays)
	}
	return days, nil
}

// parseRecurrence parses a natural language or raw RRULE recurrence string.
func parseRecurrence(s string) (*rrule.ROption, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	if isRawRRule(s) {
		raw := strings.TrimPrefix(strings.ToUpper(s), "RRULE:")
		opt, err := rrule.StrToROption(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RRULE %q: %w", raw, err)
		}
		return opt, nil
	}

	switch s {
	case "", "every day", "daily":
		return &rrule.ROption{Freq: rrule.DAILY}, nil
	case "every weekday", "weekdays":
		return &rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR},
		}, nil
	case "every weekend", "weekends":
		return &rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rrule.SA, rrule.SU},
		}, nil
	}

	if day, ok := strings.CutPrefix(s, "every "); ok {
		if wd, ok := rruleWeekdays[day]; ok {
			return &rrule.ROption{Freq: rrule.WEEKLY, Byweekday: []rrule.Weekday{wd}}, nil
		}
	}

	return nil, fmt.Errorf("unrecognized recurrence %q", s)
}

func isRawRRule(s string) bool {
	return strings.HasPrefix(s, "rrule:") || strings.HasPrefix(s, "freq=")
}

var rruleWeekdays = map[string]rrule.Weekday{
	"sunday":    rrule.SU,
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
}
