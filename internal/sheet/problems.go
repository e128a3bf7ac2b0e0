package sheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/xuri/excelize/v2"
)

const problemSheet = "problems"

// Problem file columns. The Korean headers are what the site clerks read;
// English headers are accepted on input as well.
var problemHeaders = []string{"이름", "날짜", "문제", "출근", "퇴근", "수정_출근", "수정_퇴근"}

var problemHeaderAliases = map[string]int{
	"name":                0,
	"date":                1,
	"issue":               2,
	"check-in":            3,
	"check-out":           4,
	"fixed check-in":      5,
	"fixed check-out":     6,
	"corrected check-in":  5,
	"corrected check-out": 6,
}

const (
	colName = iota
	colDate
	colIssue
	colCheckIn
	colCheckOut
	colFixedIn
	colFixedOut
)

// WriteProblems stores problems in a single-sheet workbook at path. The
// corrected columns are left blank for the clerk.
func WriteProblems(path string, problems []attendance.Problem) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), problemSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(problemHeaders))
	for i, h := range problemHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(problemSheet, "A1", &header); err != nil {
		return err
	}

	for i, p := range problems {
		row := []interface{}{
			p.Name,
			p.Date.Format("2006-01-02"),
			string(p.Issue),
			p.RawCheckIn,
			p.RawCheckOut,
			p.FixedCheckIn,
			p.FixedCheckOut,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(problemSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(problemSheet, "A", "G", 16); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save problem file %s: %w", path, err)
	}
	return nil
}

// ReadProblems reads a problem file back, including the clerk's corrections.
// It fails when the name or either corrected column is missing.
func ReadProblems(path string) ([]attendance.Problem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open problem file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("problem file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read problem file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("problem file %s is empty", path)
	}

	cols := mapProblemHeaders(rows[0])
	var missing []string
	for _, c := range []int{colName, colFixedIn, colFixedOut} {
		if cols[c] < 0 {
			missing = append(missing, problemHeaders[c])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("problem file %s is missing columns: %s", path, strings.Join(missing, ", "))
	}

	var out []attendance.Problem
	for _, row := range rows[1:] {
		get := func(c int) string {
			i := cols[c]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := get(colName)
		if name == "" {
			continue
		}
		date, _ := time.Parse("2006-01-02", get(colDate))
		out = append(out, attendance.Problem{
			Name:          name,
			Date:          date,
			Issue:         attendance.Issue(get(colIssue)),
			RawCheckIn:    get(colCheckIn),
			RawCheckOut:   get(colCheckOut),
			FixedCheckIn:  get(colFixedIn),
			FixedCheckOut: get(colFixedOut),
		})
	}
	return out, nil
}

// mapProblemHeaders returns the column index of every known column, -1 when
// absent.
func mapProblemHeaders(header []string) []int {
	cols := make([]int, len(problemHeaders))
	for i := range cols {
		cols[i] = -1
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		c := -1
		for j, want := range problemHeaders {
			if h == want {
				c = j
			}
		}
		if c < 0 {
			if alias, ok := problemHeaderAliases[strings.ToLower(h)]; ok {
				c = alias
			}
		}
		if c >= 0 && cols[c] < 0 {
			cols[c] = i
		}
	}
	return cols
}
