package report

import (
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/reconcile"
	"github.com/Flyrell/clockfill/internal/sheet"
	"github.com/Flyrell/clockfill/internal/stringutil"
)

// PatternCount is how many people one rule resolved.
type PatternCount struct {
	Pattern reconcile.Pattern
	Count   int
}

// IssueCount is how many rows were flagged with one issue.
type IssueCount struct {
	Issue attendance.Issue
	Count int
}

// Person is one resolved row of a site sheet.
type Person struct {
	Name     string
	CheckIn  string
	CheckOut string
	Date     string
	Pattern  reconcile.Pattern
}

// SiteSummary holds the outcome of one workbook fill.
type SiteSummary struct {
	Site      string
	Sheet     string
	Processed int
	Filled    int
	Missing   []string
	Patterns  []PatternCount
	People    []Person
}

// DayCount is one observed date with its attendance and classification.
type DayCount struct {
	Date  time.Time
	Count int
	Kind  attendance.DayKind
}

// Summary holds everything the run report shows.
type Summary struct {
	RunID     string
	Date      time.Time
	Average   float64
	Threshold float64
	Days      []DayCount
	Sites     []SiteSummary
	Issues    []IssueCount
	Problems  []attendance.Problem
}

// Build assembles the report for one target date. Pattern and issue counts
// follow rule order and omit zero counts.
func Build(target time.Time, pattern attendance.WorkPattern, fills []sheet.FillReport, problems []attendance.Problem) Summary {
	s := Summary{
		Date:      attendance.Day(target),
		Average:   pattern.Average,
		Threshold: pattern.Threshold,
		Problems:  problems,
	}

	for _, d := range pattern.Dates() {
		s.Days = append(s.Days, DayCount{Date: d, Count: pattern.Counts[d], Kind: pattern.Kind(d)})
	}

	for _, fill := range fills {
		site := SiteSummary{
			Site:      fill.Site,
			Sheet:     fill.Sheet,
			Processed: fill.Processed,
			Filled:    fill.Filled,
			Missing:   fill.Missing,
		}

		counts := make(map[reconcile.Pattern]int)
		for _, r := range fill.Resolutions {
			counts[r.Pattern]++
			date := ""
			if r.Date != nil {
				date = r.Date.Format("2006-01-02")
			}
			site.People = append(site.People, Person{
				Name:     r.Name,
				CheckIn:  r.CheckIn,
				CheckOut: r.CheckOut,
				Date:     date,
				Pattern:  r.Pattern,
			})
		}
		for _, p := range reconcile.Patterns {
			if counts[p] > 0 {
				site.Patterns = append(site.Patterns, PatternCount{Pattern: p, Count: counts[p]})
			}
		}
		s.Sites = append(s.Sites, site)
	}

	issues := make(map[attendance.Issue]int)
	for _, p := range problems {
		issues[p.Issue]++
	}
	for _, issue := range attendance.Issues {
		if issues[issue] > 0 {
			s.Issues = append(s.Issues, IssueCount{Issue: issue, Count: issues[issue]})
		}
	}
	return s
}

// Holidays returns the observed dates classified as holidays.
func (s Summary) Holidays() []DayCount {
	var out []DayCount
	for _, d := range s.Days {
		if d.Kind == attendance.DayHoliday {
			out = append(out, d)
		}
	}
	return out
}

// FileName is the default report file name for ext, such as ".pdf".
func (s Summary) FileName(ext string) string {
	name := "clockfill " + s.Date.Format("2006-01-02")
	if s.RunID != "" {
		name += " " + s.RunID
	}
	return stringutil.Slugify(name) + ext
}
