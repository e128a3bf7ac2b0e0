package table

import (
	"strings"

	"github.com/Flyrell/clockfill/internal/cell"
)

// Canonical column names produced by MapColumns.
const (
	ColDate     = "date"
	ColName     = "name"
	ColCheckIn  = "check_in"
	ColCheckOut = "check_out"
)

var canonicalColumns = []string{ColDate, ColName, ColCheckIn, ColCheckOut}

// Table is a loaded sheet: one header row and the data rows beneath it.
type Table struct {
	Headers []string
	Rows    [][]cell.Value
}

// RawRow is one swipe-log entry taken from a mapped table.
type RawRow struct {
	Date     cell.Value
	Name     string
	CheckIn  cell.Value
	CheckOut cell.Value
}

// Column returns the index of the first header equal to name, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// RawRows converts a table produced by MapColumns into typed rows.
// Unmapped tables yield rows with empty fields.
func (t Table) RawRows() []RawRow {
	dateIdx := t.Column(ColDate)
	nameIdx := t.Column(ColName)
	inIdx := t.Column(ColCheckIn)
	outIdx := t.Column(ColCheckOut)

	rows := make([]RawRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, RawRow{
			Date:     at(r, dateIdx),
			Name:     strings.TrimSpace(at(r, nameIdx).String()),
			CheckIn:  at(r, inIdx),
			CheckOut: at(r, outIdx),
		})
	}
	return rows
}

func at(row []cell.Value, idx int) cell.Value {
	if idx < 0 || idx >= len(row) {
		return cell.Empty()
	}
	return row[idx]
}
