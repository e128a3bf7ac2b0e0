package reconcile

import (
	"fmt"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
)

// Resolution is the check-in/check-out pair chosen for one person. Empty
// strings mean nothing should be written; Date is nil when there is no data.
type Resolution struct {
	CheckIn  string
	CheckOut string
	Date     *time.Time
	Pattern  Pattern
}

func (r Resolution) String() string {
	date := "-"
	if r.Date != nil {
		date = r.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s %s~%s (%s)", date, orDash(r.CheckIn), orDash(r.CheckOut), r.Pattern)
}

// Options tunes the Engine.
type Options struct {
	// NightShiftHour is the first check-in hour treated as a night arrival.
	NightShiftHour int
}

func DefaultOptions() Options {
	return Options{NightShiftHour: 12}
}

// situation is what the rules inspect for one person.
type situation struct {
	today     attendance.Record
	hasToday  bool
	yest      attendance.Record
	hasYest   bool
	todayDate time.Time
}

type rule struct {
	when func(s situation, o Options) bool
	then func(s situation) Resolution
}

// Engine resolves one person at a time by walking an ordered rule list.
// It holds no state besides its options and is safe for concurrent use.
type Engine struct {
	opts  Options
	rules []rule
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts, rules: defaultRules()}
}

// Resolve picks the attendance to write for name on today's date. Either
// index may be nil.
func (e *Engine) Resolve(name string, today, yesterday *attendance.Index) Resolution {
	s := situation{todayDate: today.Date()}
	s.today, s.hasToday = today.Lookup(name)
	s.yest, s.hasYest = yesterday.Lookup(name)
	if s.hasToday {
		s.todayDate = s.today.Date
	}

	for _, r := range e.rules {
		if r.when(s, e.opts) {
			return r.then(s)
		}
	}
	return Resolution{Pattern: Unknown}
}

func defaultRules() []rule {
	return []rule{
		{
			when: func(s situation, _ Options) bool { return s.today.IsComplete() },
			then: func(s situation) Resolution {
				return resolved(s.today.CheckIn, s.today.CheckOut, s.today.Date, TodayComplete)
			},
		},
		{
			when: func(s situation, o Options) bool {
				return checkInOnly(s.today) && s.today.CheckIn.Hour() < o.NightShiftHour && s.yest.HasCheckOut()
			},
			then: func(s situation) Resolution {
				return resolved(s.today.CheckIn, s.yest.CheckOut, checkOutDate(s.yest), TodayCheckInWithPrevOut)
			},
		},
		{
			when: func(s situation, o Options) bool {
				return checkInOnly(s.today) && s.today.CheckIn.Hour() < o.NightShiftHour
			},
			then: func(s situation) Resolution {
				return resolved(s.today.CheckIn, nil, s.todayDate, TodayCheckInOnly)
			},
		},
		{
			when: func(s situation, _ Options) bool { return checkInOnly(s.today) && s.yest.HasCheckOut() },
			then: func(s situation) Resolution {
				return resolved(s.today.CheckIn, s.yest.CheckOut, checkOutDate(s.yest), NightShift)
			},
		},
		{
			when: func(s situation, _ Options) bool { return checkInOnly(s.today) },
			then: func(s situation) Resolution {
				return resolved(s.today.CheckIn, nil, s.todayDate, NightShiftNoCheckOut)
			},
		},
		{
			when: func(s situation, _ Options) bool { return checkOutOnly(s.today) && s.yest.HasCheckIn() },
			then: func(s situation) Resolution {
				return resolved(s.yest.CheckIn, s.today.CheckOut, s.yest.Date, PrevNightShift)
			},
		},
		{
			when: func(s situation, _ Options) bool { return checkOutOnly(s.today) },
			then: func(s situation) Resolution {
				return resolved(nil, s.today.CheckOut, s.todayDate, CheckOutOnly)
			},
		},
		{
			when: func(s situation, o Options) bool {
				return s.yest.IsComplete() && s.yest.CheckIn.Hour() >= o.NightShiftHour
			},
			then: func(s situation) Resolution {
				return resolved(s.yest.CheckIn, s.yest.CheckOut, checkOutDate(s.yest), PrevNightShiftComplete)
			},
		},
		{
			when: func(s situation, _ Options) bool { return s.yest.IsComplete() },
			then: func(s situation) Resolution {
				return resolved(nil, s.yest.CheckOut, checkOutDate(s.yest), AbsentWithPrevCheckOut)
			},
		},
		{
			when: func(s situation, _ Options) bool { return s.yest.HasCheckIn() },
			then: func(situation) Resolution { return Resolution{Pattern: PrevCheckInOnlyNoData} },
		},
		{
			when: func(situation, Options) bool { return true },
			then: func(situation) Resolution { return Resolution{Pattern: NoData} },
		},
	}
}

func checkInOnly(r attendance.Record) bool  { return r.HasCheckIn() && !r.HasCheckOut() }
func checkOutOnly(r attendance.Record) bool { return !r.HasCheckIn() && r.HasCheckOut() }

// checkOutDate is the calendar date of the check-out itself, falling back to
// the record date when the check-out was written without a date.
func checkOutDate(r attendance.Record) time.Time {
	if attendance.HasCalendarDate(*r.CheckOut) {
		return attendance.Day(*r.CheckOut)
	}
	return r.Date
}

func resolved(in, out *time.Time, date time.Time, p Pattern) Resolution {
	d := attendance.Day(date)
	return Resolution{CheckIn: clock(in), CheckOut: clock(out), Date: &d, Pattern: p}
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
