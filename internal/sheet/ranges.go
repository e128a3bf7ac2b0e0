package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellRange is an inclusive rectangle of cells, 1-based.
type cellRange struct {
	col1, row1 int
	col2, row2 int
}

// parseRange accepts "B6:B36" or a single cell such as "C2".
func parseRange(ref string) (cellRange, error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	from, to, found := strings.Cut(ref, ":")
	if !found {
		to = from
	}

	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return cellRange{}, fmt.Errorf("range %q: %w", ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return cellRange{}, fmt.Errorf("range %q: %w", ref, err)
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return cellRange{col1: c1, row1: r1, col2: c2, row2: r2}, nil
}

func (r cellRange) rows() int { return r.row2 - r.row1 + 1 }

// cells lists every cell name row by row.
func (r cellRange) cells() []string {
	out := make([]string, 0, r.rows()*(r.col2-r.col1+1))
	for row := r.row1; row <= r.row2; row++ {
		for col := r.col1; col <= r.col2; col++ {
			name, _ := excelize.CoordinatesToCellName(col, row)
			out = append(out, name)
		}
	}
	return out
}

// at returns the cell in the first column of the i-th row, 0-based.
func (r cellRange) at(i int) string {
	name, _ := excelize.CoordinatesToCellName(r.col1, r.row1+i)
	return name
}

// block is a parsed names/check-in/check-out triple.
type block struct {
	names, checkIn, checkOut cellRange
}

func parseBlock(names, checkIn, checkOut string) (block, error) {
	var b block
	var err error
	if b.names, err = parseRange(names); err != nil {
		return block{}, err
	}
	if b.checkIn, err = parseRange(checkIn); err != nil {
		return block{}, err
	}
	if b.checkOut, err = parseRange(checkOut); err != nil {
		return block{}, err
	}
	if b.checkIn.rows() != b.names.rows() || b.checkOut.rows() != b.names.rows() {
		return block{}, fmt.Errorf("block %s: ranges span different row counts", names)
	}
	return b, nil
}
