package attendance

import (
	"time"

	"github.com/Flyrell/clockfill/internal/table"
)

// ValidateOptions tunes Validate.
type ValidateOptions struct {
	// OvernightGapHours is the hour gap at or above which a check-out earlier
	// than the check-in is read as an overnight shift.
	OvernightGapHours int
}

func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{OvernightGapHours: 12}
}

// Validate partitions the rows dated target with a non-empty name into valid
// records and problems. Only the first matching issue is reported per row.
func Validate(rows []table.RawRow, target time.Time, opts ValidateOptions) ValidationResult {
	target = Day(target)
	var res ValidationResult

	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		d, ok := ParseDateValue(row.Date)
		if !ok || !d.Equal(target) {
			continue
		}

		cin, inOK := ParseTimeValue(row.CheckIn)
		cout, outOK := ParseTimeValue(row.CheckOut)

		issue := classify(cin, inOK, cout, outOK, opts.OvernightGapHours)
		if issue == "" {
			res.Valid = append(res.Valid, Record{Name: row.Name, Date: d, CheckIn: cin, CheckOut: cout})
			continue
		}
		res.Problems = append(res.Problems, Problem{
			Name:        row.Name,
			Date:        d,
			Issue:       issue,
			RawCheckIn:  row.CheckIn.String(),
			RawCheckOut: row.CheckOut.String(),
		})
	}
	return res
}

func classify(cin *time.Time, inOK bool, cout *time.Time, outOK bool, gap int) Issue {
	switch {
	case cin != nil && !inOK:
		return IssueMalformedCheckIn
	case cout != nil && !outOK:
		return IssueMalformedCheckOut
	case cin != nil && cout == nil:
		return IssueMissingCheckOut
	case cin == nil && cout != nil:
		return IssueMissingCheckIn
	case cin != nil && cout != nil && clockMinutes(*cout) < clockMinutes(*cin) && cin.Hour()-cout.Hour() < gap:
		return IssueCheckOutBeforeIn
	}
	return ""
}

// clockMinutes ignores the date so HH:MM values on the sentinel date compare
// correctly against full timestamps.
func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
