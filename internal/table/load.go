package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/cell"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnreadable is wrapped by every Load failure caused by the file itself.
var ErrUnreadable = errors.New("raw table unreadable")

// maxXLSRows bounds ReadAllCells for legacy workbooks.
const maxXLSRows = 100000

// LoadOptions controls how text files are decoded.
type LoadOptions struct {
	// Encoding applies to CSV input: "utf-8" (default), "euc-kr"/"cp949" or "utf-16".
	Encoding string
}

// Load reads the first sheet of an .xlsx, .xls or .csv file. The first
// non-blank row becomes the header row.
func Load(path string, opts LoadOptions) (Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	case ".xls":
		return loadXLS(path)
	case ".csv":
		return loadCSV(path, opts.Encoding)
	default:
		return Table{}, fmt.Errorf("%w: unsupported file type %q", ErrUnreadable, ext)
	}
}

func loadXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Table{}, fmt.Errorf("%w: no worksheet found", ErrUnreadable)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	typed := make([][]cell.Value, len(rows))
	for r, row := range rows {
		typed[r] = make([]cell.Value, len(row))
		for c, raw := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				typed[r][c] = cell.Text(raw)
				continue
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				typ = excelize.CellTypeUnset
			}
			typed[r][c] = xlsxValue(raw, typ)
		}
	}
	return buildTable(typed)
}

// xlsxValue keeps numeric cells numeric so serial dates reach the parser
// as numbers while string cells that merely look numeric stay text.
func xlsxValue(raw string, typ excelize.CellType) cell.Value {
	if strings.TrimSpace(raw) == "" {
		return cell.Empty()
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return cell.Number(f)
		}
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return cell.Timestamp(t)
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return cell.Number(f)
		}
	}
	return cell.Text(raw)
}

func loadXLS(path string) (Table, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if wb.NumSheets() == 0 {
		return Table{}, fmt.Errorf("%w: no worksheet found", ErrUnreadable)
	}

	rows := wb.ReadAllCells(maxXLSRows)
	typed := make([][]cell.Value, len(rows))
	for r, row := range rows {
		typed[r] = make([]cell.Value, len(row))
		for c, raw := range row {
			typed[r][c] = xlsValue(raw)
		}
	}
	return buildTable(typed)
}

// xlsValue recovers cell types from the strings the xls reader returns:
// RFC 3339 dates become timestamps and numbers (serial dates and time
// fractions included) become numbers. The reader does not say which cells
// were strings, so digits typed as text also come back numeric.
func xlsValue(raw string) cell.Value {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return cell.Timestamp(t)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return cell.Number(f)
	}
	return cell.Text(raw)
}

func loadCSV(path, encoding string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	r, err := decodingReader(f, encoding)
	if err != nil {
		return Table{}, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	typed := make([][]cell.Value, len(records))
	for i, rec := range records {
		typed[i] = make([]cell.Value, len(rec))
		for j, s := range rec {
			typed[i][j] = cell.Text(s)
		}
	}
	return buildTable(typed)
}

// SupportedEncoding reports whether Load can decode CSV files in encoding.
func SupportedEncoding(encoding string) bool {
	_, err := decodingReader(strings.NewReader(""), encoding)
	return err == nil
}

func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "euc-kr", "euckr", "cp949":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	case "utf-16", "utf16":
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ErrUnreadable, encoding)
	}
}

// buildTable takes the first non-blank row as headers and drops blank rows.
func buildTable(rows [][]cell.Value) (Table, error) {
	var t Table
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if t.Headers == nil {
			t.Headers = make([]string, len(row))
			for i, v := range row {
				t.Headers[i] = v.String()
			}
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Headers == nil {
		return Table{}, fmt.Errorf("%w: worksheet is empty", ErrUnreadable)
	}
	return t, nil
}

func blank(row []cell.Value) bool {
	for _, v := range row {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}
