package attendance

import "time"

// Record is one person's parsed attendance for a calendar date. CheckIn and
// CheckOut may fall on a different date than Date for overnight shifts.
type Record struct {
	Name     string
	Date     time.Time
	CheckIn  *time.Time
	CheckOut *time.Time
}

func (r Record) HasCheckIn() bool  { return r.CheckIn != nil }
func (r Record) HasCheckOut() bool { return r.CheckOut != nil }
func (r Record) IsComplete() bool  { return r.HasCheckIn() && r.HasCheckOut() }

// Issue classifies why a row needs human review.
type Issue string

const (
	IssueMalformedCheckIn  Issue = "malformed check-in"
	IssueMalformedCheckOut Issue = "malformed check-out"
	IssueMissingCheckOut   Issue = "check-in without check-out"
	IssueMissingCheckIn    Issue = "check-out without check-in"
	IssueCheckOutBeforeIn  Issue = "check-out earlier than check-in"
)

// Issues lists every issue in the order rows are tested for them.
var Issues = []Issue{
	IssueMalformedCheckIn,
	IssueMalformedCheckOut,
	IssueMissingCheckOut,
	IssueMissingCheckIn,
	IssueCheckOutBeforeIn,
}

// Problem is a row flagged for review. FixedCheckIn and FixedCheckOut are
// only ever filled in by a clerk through the problem file.
type Problem struct {
	Name          string
	Date          time.Time
	Issue         Issue
	RawCheckIn    string
	RawCheckOut   string
	FixedCheckIn  string
	FixedCheckOut string
}

// HasCorrection reports whether the clerk supplied at least one value.
func (p Problem) HasCorrection() bool {
	return p.FixedCheckIn != "" || p.FixedCheckOut != ""
}

// ValidationResult partitions one date's rows; no row appears in both lists.
type ValidationResult struct {
	Valid    []Record
	Problems []Problem
}

func (v ValidationResult) HasProblems() bool { return len(v.Problems) > 0 }

// Total is the number of rows that qualified for validation.
func (v ValidationResult) Total() int { return len(v.Valid) + len(v.Problems) }
