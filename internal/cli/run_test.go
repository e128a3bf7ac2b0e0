package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var runNow = time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)

const rawCSV = `date,name,check-in,check-out
2024-03-04,Kim,09:00,18:00
2024-03-04,Lee,22:00,
2024-03-04,Park,09:00,18:00
2024-03-05,Kim,08:50,18:10
2024-03-05,Lee,,06:30
2024-03-05,Park,9시,18:00
`

type runFixture struct {
	homeDir    string
	configPath string
	rawPath    string
	workbook   string
	problems   string
}

// setupRunTest writes a one-site config, a raw CSV and a workbook whose only
// sheet "03.04" lists Kim, Lee and Park in B3:B5.
func setupRunTest(t *testing.T) runFixture {
	t.Helper()
	dir := t.TempDir()
	fx := runFixture{
		homeDir:    filepath.Join(dir, "home"),
		configPath: filepath.Join(dir, "config.yaml"),
		rawPath:    filepath.Join(dir, "raw.csv"),
		workbook:   filepath.Join(dir, "yeoju.xlsx"),
		problems:   filepath.Join(dir, "problems.xlsx"),
	}

	cfg := config.Default()
	cfg.ProblemFile = fx.problems
	cfg.Sites = []config.Site{{
		Name:           "yeoju",
		Blocks:         []config.Block{{Names: "B3:B5", CheckIn: "C3:C5", CheckOut: "D3:D5"}},
		ClearRanges:    []string{"C3:D5"},
		ResetDateCells: []string{"A1"},
	}}
	require.NoError(t, config.Write(fx.configPath, cfg))
	require.NoError(t, os.WriteFile(fx.rawPath, []byte(rawCSV), 0644))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "03.04"))
	for i, name := range []string{"Kim", "Lee", "Park"} {
		ref, err := excelize.CoordinatesToCellName(2, 3+i)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStr("03.04", ref, name))
	}
	require.NoError(t, f.SaveAs(fx.workbook))
	require.NoError(t, f.Close())
	return fx
}

func (fx runFixture) options() runOptions {
	return runOptions{
		raw:        fx.rawPath,
		date:       "2024-03-05",
		configPath: fx.configPath,
		sites:      []string{"yeoju=" + fx.workbook},
	}
}

func execRun(fx runFixture, opts runOptions, pk PromptKit) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd := runCmd
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := runRun(cmd, fx.homeDir, opts, pk, func() time.Time { return runNow })
	return stdout.String(), stderr.String(), err
}

func cellValue(t *testing.T, path, sheet, ref string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func TestRunFillsWorkbook(t *testing.T) {
	fx := setupRunTest(t)

	stdout, stderr, err := execRun(fx, fx.options(), PromptKit{})

	require.NoError(t, err)
	assert.Contains(t, stdout, "yeoju")
	assert.Contains(t, stdout, "03.05")
	assert.Contains(t, stdout, "2 rows need review")
	assert.Contains(t, stderr, "raw data loaded")
	assert.Contains(t, stderr, "run finished")

	assert.Equal(t, "2024-03-05", cellValue(t, fx.workbook, "03.05", "A1"))
	assert.Equal(t, "08:50", cellValue(t, fx.workbook, "03.05", "C3"))
	assert.Equal(t, "18:10", cellValue(t, fx.workbook, "03.05", "D3"))
	assert.Equal(t, "06:30", cellValue(t, fx.workbook, "03.05", "D4"))
}

func TestRunWritesProblemFileAndState(t *testing.T) {
	fx := setupRunTest(t)

	_, _, err := execRun(fx, fx.options(), PromptKit{})
	require.NoError(t, err)

	assert.FileExists(t, fx.problems)

	st, err := config.ReadState(fx.homeDir)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "2024-03-05", st.Date)
	assert.Equal(t, "03.05", st.Sheet)
	assert.Equal(t, 2, st.Problems)
	assert.Equal(t, fx.problems, st.ProblemFile)
	assert.Equal(t, fx.workbook, st.Workbooks["yeoju"])
	assert.Len(t, st.RunID, 7)
	assert.True(t, runNow.Equal(st.FinishedAt))
}

func TestRunIDFollowsInjectedClock(t *testing.T) {
	fx := setupRunTest(t)

	_, _, err := execRun(fx, fx.options(), PromptKit{})
	require.NoError(t, err)

	st, err := config.ReadState(fx.homeDir)
	require.NoError(t, err)
	require.NotNil(t, st)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, hashutil.RunID(day, runNow, fx.rawPath), st.RunID)
}

func TestRunRange(t *testing.T) {
	fx := setupRunTest(t)
	opts := fx.options()
	opts.date = ""
	opts.from = "2024-03-04"
	opts.to = "2024-03-05"

	_, _, err := execRun(fx, opts, PromptKit{})
	require.NoError(t, err)

	f, err := excelize.OpenFile(fx.workbook)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"03.04", "03.05"}, f.GetSheetList())

	v, err := f.GetCellValue("03.04", "C3")
	require.NoError(t, err)
	assert.Equal(t, "09:00", v)
}

func TestRunWritesReport(t *testing.T) {
	fx := setupRunTest(t)
	opts := fx.options()
	opts.report = filepath.Join(t.TempDir(), "summary.html")

	stdout, _, err := execRun(fx, opts, PromptKit{})
	require.NoError(t, err)

	assert.Contains(t, stdout, "Report written to")
	data, err := os.ReadFile(opts.report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kim")
}

func TestRunPromptsForMissingInputs(t *testing.T) {
	fx := setupRunTest(t)
	var asked []string
	pk := PromptKit{
		Prompt: func(prompt string) (string, error) {
			asked = append(asked, prompt)
			switch prompt {
			case "Raw attendance file":
				return fx.rawPath, nil
			case "Target date (empty for today)":
				return "", nil
			case "Workbook for yeoju":
				return fx.workbook, nil
			}
			return "", nil
		},
		MultiSelect: func(title string, options []string) ([]int, error) {
			assert.Equal(t, []string{"yeoju"}, options)
			return []int{0}, nil
		},
	}

	_, _, err := execRun(fx, runOptions{configPath: fx.configPath}, pk)
	require.NoError(t, err)

	assert.Equal(t, []string{"Raw attendance file", "Target date (empty for today)", "Workbook for yeoju"}, asked)
	assert.Equal(t, "08:50", cellValue(t, fx.workbook, "03.05", "C3"), "an empty date means today")
}

func TestRunErrors(t *testing.T) {
	fx := setupRunTest(t)

	tests := []struct {
		name   string
		modify func(*runOptions)
		want   string
	}{
		{"no raw file", func(o *runOptions) { o.raw = "" }, "--raw is required"},
		{"date and range", func(o *runOptions) { o.from = "2024-03-01"; o.to = "2024-03-02" }, "mutually exclusive"},
		{"half a range", func(o *runOptions) { o.date = ""; o.from = "2024-03-01" }, "must be given together"},
		{"every without range", func(o *runOptions) { o.every = "weekdays" }, "--every requires"},
		{"bad date", func(o *runOptions) { o.date = "someday" }, "--date"},
		{"no sites", func(o *runOptions) { o.sites = nil }, "no workbooks to fill"},
		{"unknown site", func(o *runOptions) { o.sites = []string{"busan=x.xlsx"} }, `unknown site "busan"`},
		{"malformed site", func(o *runOptions) { o.sites = []string{"yeoju"} }, "expected name=path"},
		{"bad report format", func(o *runOptions) { o.report = "out.docx" }, "unsupported report format"},
		{"missing raw file", func(o *runOptions) { o.raw = filepath.Join(t.TempDir(), "nope.csv") }, "nope.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fx.options()
			tt.modify(&opts)
			_, _, err := execRun(fx, opts, PromptKit{})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRunReportsFailedWorkbook(t *testing.T) {
	fx := setupRunTest(t)
	opts := fx.options()
	opts.sites = []string{"yeoju=" + filepath.Join(t.TempDir(), "missing.xlsx")}

	_, stderr, err := execRun(fx, opts, PromptKit{})

	assert.ErrorContains(t, err, "yeoju 2024-03-05")
	assert.Contains(t, stderr, "workbook not filled")
}

func TestReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"out.pdf", "pdf", false},
		{"OUT.HTML", "html", false},
		{"page.htm", "html", false},
		{"pdf", "pdf", false},
		{"html", "html", false},
		{"out.txt", "", true},
		{"docx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := reportFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
