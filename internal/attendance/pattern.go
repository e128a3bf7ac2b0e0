package attendance

import (
	"sort"
	"time"

	"github.com/Flyrell/clockfill/internal/table"
)

// DayKind is the density-inferred classification of a calendar date.
type DayKind int

const (
	DayUnknown DayKind = iota
	DayWorkday
	DayHoliday
	DayWeekend
)

func (k DayKind) String() string {
	switch k {
	case DayWorkday:
		return "workday"
	case DayHoliday:
		return "holiday"
	case DayWeekend:
		return "weekend"
	default:
		return "unknown"
	}
}

// PatternOptions tunes ClassifyDays.
type PatternOptions struct {
	HolidayFactor     float64
	MinimumAttendance int
}

// DefaultPatternOptions returns the factor and minimum used by the site clerks.
func DefaultPatternOptions() PatternOptions {
	return PatternOptions{HolidayFactor: 0.5, MinimumAttendance: 3}
}

// WorkPattern holds the classification of every observed date. The date
// slices are sorted ascending and disjoint.
type WorkPattern struct {
	Workdays  []time.Time
	Holidays  []time.Time
	Weekends  []time.Time
	Counts    map[time.Time]int
	Average   float64
	Threshold float64
	Skipped   int
}

// Kind returns the classification of d, or DayUnknown when d was not observed.
func (p WorkPattern) Kind(d time.Time) DayKind {
	d = Day(d)
	for _, set := range []struct {
		dates []time.Time
		kind  DayKind
	}{
		{p.Workdays, DayWorkday},
		{p.Holidays, DayHoliday},
		{p.Weekends, DayWeekend},
	} {
		i := sort.Search(len(set.dates), func(i int) bool { return !set.dates[i].Before(d) })
		if i < len(set.dates) && set.dates[i].Equal(d) {
			return set.kind
		}
	}
	return DayUnknown
}

func (p WorkPattern) IsWorkday(d time.Time) bool { return p.Kind(d) == DayWorkday }

// Dates returns every observed date in ascending order.
func (p WorkPattern) Dates() []time.Time {
	out := make([]time.Time, 0, len(p.Counts))
	for d := range p.Counts {
		out = append(out, d)
	}
	sortDates(out)
	return out
}

// ClassifyDays groups rows by date and classifies each date by its check-in
// density relative to the average of the non-zero days.
func ClassifyDays(rows []table.RawRow, opts PatternOptions, obs Observer) WorkPattern {
	p := WorkPattern{Counts: make(map[time.Time]int)}

	for _, row := range rows {
		d, ok := ParseDateValue(row.Date)
		if !ok {
			p.Skipped++
			continue
		}
		if _, seen := p.Counts[d]; !seen {
			p.Counts[d] = 0
		}
		if !row.CheckIn.IsEmpty() {
			p.Counts[d]++
		}
	}

	if p.Skipped > 0 {
		observe(obs, LevelWarn, "rows with unreadable dates skipped", map[string]int{"skipped": p.Skipped})
	}

	var sum, nonZero int
	for _, c := range p.Counts {
		if c > 0 {
			sum += c
			nonZero++
		}
	}
	if nonZero > 0 {
		p.Average = float64(sum) / float64(nonZero)
	}
	p.Threshold = p.Average * opts.HolidayFactor

	for d, c := range p.Counts {
		switch {
		case c == 0:
			p.Weekends = append(p.Weekends, d)
		case float64(c) < p.Threshold || c < opts.MinimumAttendance:
			p.Holidays = append(p.Holidays, d)
		default:
			p.Workdays = append(p.Workdays, d)
		}
	}
	sortDates(p.Workdays)
	sortDates(p.Holidays)
	sortDates(p.Weekends)

	observe(obs, LevelInfo, "work pattern classified", map[string]int{
		"workdays": len(p.Workdays),
		"holidays": len(p.Holidays),
		"weekends": len(p.Weekends),
	})
	return p
}

// PreviousWorkday walks back from target one day at a time for at most
// lookback days and returns the first workday found.
func PreviousWorkday(target time.Time, p WorkPattern, lookback int) (time.Time, bool) {
	target = Day(target)
	for i := 1; i <= lookback; i++ {
		d := target.AddDate(0, 0, -i)
		if p.IsWorkday(d) {
			return d, true
		}
	}
	return time.Time{}, false
}

// PreviousWorkdayOrSelf is PreviousWorkday with the degraded fallback: when
// no workday is found the target itself is returned and a warning is raised.
func PreviousWorkdayOrSelf(target time.Time, p WorkPattern, lookback int, obs Observer) time.Time {
	if d, ok := PreviousWorkday(target, p, lookback); ok {
		return d
	}
	observe(obs, LevelWarn, "no previous workday within lookback, using target date", map[string]int{"lookback": lookback})
	return Day(target)
}

func sortDates(ds []time.Time) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Before(ds[j]) })
}
