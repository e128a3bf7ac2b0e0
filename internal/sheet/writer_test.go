package sheet

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/cell"
	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/reconcile"
	"github.com/Flyrell/clockfill/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	today     = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	yesterday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
)

func testSite() config.Site {
	return config.Site{
		Name: "yeoju",
		Blocks: []config.Block{
			{Names: "B3:B6", CheckIn: "C3:C6", CheckOut: "D3:D6"},
		},
		ClearRanges:    []string{"C3:D6"},
		ResetDateCells: []string{"A1"},
		CarryOver:      &config.CarryOver{Cells: []string{"F1"}, Source: "W37"},
	}
}

// newWorkbook writes a workbook with one sheet named "03.04" holding the
// given names in B3 downwards and stale times beside them.
func newWorkbook(t *testing.T, names ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yeoju.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "03.04"))
	for i, n := range names {
		row := 3 + i
		require.NoError(t, f.SetCellStr("03.04", cellName(t, 2, row), n))
		require.NoError(t, f.SetCellStr("03.04", cellName(t, 3, row), "07:00"))
		require.NoError(t, f.SetCellStr("03.04", cellName(t, 4, row), "16:00"))
	}
	require.NoError(t, f.SetCellStr("03.04", "W37", "12"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func cellName(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return name
}

func rawRow(date time.Time, name, in, out string) table.RawRow {
	return table.RawRow{
		Date:     cell.Text(date.Format("2006-01-02")),
		Name:     name,
		CheckIn:  cell.Text(in),
		CheckOut: cell.Text(out),
	}
}

func indexes() (*attendance.Index, *attendance.Index) {
	rows := []table.RawRow{
		rawRow(today, "김철수", "09:00", "18:00"),
		rawRow(today, "Lee", "23:30", ""),
		rawRow(yesterday, "Lee", "", "07:15"),
		rawRow(yesterday, "박영희", "09:00", ""),
	}
	return attendance.BuildIndex(rows, today), attendance.BuildIndex(rows, yesterday)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
}

func TestFillCreatesSheetAndWritesTimes(t *testing.T) {
	path := newWorkbook(t, "김철수", "lee", "박영희", "Ghost")
	w := NewWriter(path, testSite(), Options{Logger: quietLogger()})
	ti, yi := indexes()

	report, err := w.Fill(today, ti, yi, reconcile.NewEngine(reconcile.DefaultOptions()))
	require.NoError(t, err)

	assert.Equal(t, "03.05", report.Sheet)
	assert.True(t, report.Created)
	assert.Equal(t, 8, report.Cleared)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 4, report.Filled)
	assert.Equal(t, []string{"Ghost"}, report.Missing)
	require.Len(t, report.Resolutions, 3)
	assert.Equal(t, reconcile.NightShift, report.Resolutions[1].Pattern)
	assert.Equal(t, reconcile.PrevCheckInOnlyNoData, report.Resolutions[2].Pattern)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"03.04", "03.05"}, f.GetSheetList())

	get := func(ref string) string {
		v, err := f.GetCellValue("03.05", ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "2024-03-05", get("A1"))
	assert.Equal(t, "09:00", get("C3"))
	assert.Equal(t, "18:00", get("D3"))
	assert.Equal(t, "23:30", get("C4"))
	assert.Equal(t, "07:15", get("D4"))
	assert.Empty(t, get("C5"), "stale values are cleared")
	assert.Empty(t, get("D6"))

	typ, err := f.GetCellType("03.05", "C3")
	require.NoError(t, err)
	assert.Contains(t, []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString}, typ,
		"times are written as text")

	formula, err := f.GetCellFormula("03.05", "F1")
	require.NoError(t, err)
	assert.Equal(t, "'03.04'!W37", formula)

	old, err := f.GetCellValue("03.04", "C3")
	require.NoError(t, err)
	assert.Equal(t, "07:00", old, "the previous sheet is untouched")
}

func TestFillReusesExistingSheet(t *testing.T) {
	path := newWorkbook(t, "김철수")
	w := NewWriter(path, testSite(), Options{SheetNameFormat: "01.02", Logger: quietLogger()})
	ti, yi := indexes()
	engine := reconcile.NewEngine(reconcile.DefaultOptions())

	_, err := w.Fill(today, ti, yi, engine)
	require.NoError(t, err)
	report, err := w.Fill(today, ti, yi, engine)
	require.NoError(t, err)

	assert.False(t, report.Created)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Len(t, f.GetSheetList(), 2)
}

func TestFillWithoutPreviousSheetSkipsCarryOver(t *testing.T) {
	path := newWorkbook(t, "김철수")
	w := NewWriter(path, testSite(), Options{Logger: quietLogger()})
	ti, yi := indexes()

	_, err := w.Fill(yesterday, ti, yi, reconcile.NewEngine(reconcile.DefaultOptions()))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	formula, err := f.GetCellFormula("03.04", "F1")
	require.NoError(t, err)
	assert.Empty(t, formula)
}

func TestFillRejectsMismatchedBlock(t *testing.T) {
	site := testSite()
	site.Blocks = []config.Block{{Names: "B3:B6", CheckIn: "C3:C5", CheckOut: "D3:D6"}}
	w := NewWriter(newWorkbook(t), site, Options{Logger: quietLogger()})

	_, err := w.Fill(today, nil, nil, reconcile.NewEngine(reconcile.DefaultOptions()))
	assert.ErrorContains(t, err, "different row counts")
}

func TestFillMissingWorkbook(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "nope.xlsx"), testSite(), Options{Logger: quietLogger()})
	_, err := w.Fill(today, nil, nil, reconcile.NewEngine(reconcile.DefaultOptions()))
	assert.ErrorContains(t, err, "open workbook")
}

func TestApplyCorrections(t *testing.T) {
	path := newWorkbook(t, "김철수", "Lee")
	w := NewWriter(path, testSite(), Options{Logger: quietLogger()})

	report, err := w.ApplyCorrections("03.04", []attendance.Problem{
		{Name: " 김철수 ", FixedCheckIn: "08:30"},
		{Name: "Lee", FixedCheckIn: "22:00", FixedCheckOut: "06:00"},
		{Name: "lee", FixedCheckOut: "06:30"},
		{Name: "Park", FixedCheckIn: "09:00"},
		{Name: "Lee", RawCheckIn: "8시"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"lee", "Park"}, report.Unknown, "names match case-sensitively")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	for ref, want := range map[string]string{"C3": "08:30", "D3": "16:00", "C4": "22:00", "D4": "06:00"} {
		got, err := f.GetCellValue("03.04", ref)
		require.NoError(t, err)
		assert.Equal(t, want, got, ref)
	}
}

func TestApplyCorrectionsUnknownSheet(t *testing.T) {
	w := NewWriter(newWorkbook(t, "Lee"), testSite(), Options{Logger: quietLogger()})
	_, err := w.ApplyCorrections("12.31", nil)
	assert.ErrorContains(t, err, "no sheet")
}

func TestParseRange(t *testing.T) {
	r, err := parseRange("$B$6:B36")
	require.NoError(t, err)
	assert.Equal(t, 31, r.rows())
	assert.Equal(t, "B6", r.at(0))
	assert.Equal(t, "B36", r.at(30))

	r, err = parseRange("D2:C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "D1", "C2", "D2"}, r.cells())

	_, err = parseRange("not a cell")
	assert.Error(t, err)
}
