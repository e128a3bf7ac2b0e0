package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/cell"
	"github.com/Flyrell/clockfill/internal/reconcile"
	"github.com/Flyrell/clockfill/internal/sheet"
	"github.com/Flyrell/clockfill/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func testSummary() Summary {
	var rows []table.RawRow
	for d, n := range []int{10, 2, 10} {
		for i := 0; i < n; i++ {
			rows = append(rows, table.RawRow{
				Date:    cell.Text(target.AddDate(0, 0, d-2).Format("2006-01-02")),
				Name:    "p",
				CheckIn: cell.Text("09:00"),
			})
		}
	}
	pattern := attendance.ClassifyDays(rows, attendance.DefaultPatternOptions(), attendance.Discard)

	d := target
	fills := []sheet.FillReport{
		{
			Site:      "여주",
			Sheet:     "03.05",
			Processed: 31,
			Filled:    3,
			Missing:   []string{"Ghost"},
			Resolutions: []sheet.PersonResult{
				{Name: "김철수", Resolution: reconcile.Resolution{CheckIn: "09:00", CheckOut: "18:00", Date: &d, Pattern: reconcile.TodayComplete}},
				{Name: "Lee|Park", Resolution: reconcile.Resolution{CheckIn: "08:55", Date: &d, Pattern: reconcile.TodayCheckInOnly}},
				{Name: "박영희", Resolution: reconcile.Resolution{Pattern: reconcile.NoData}},
				{Name: "최", Resolution: reconcile.Resolution{CheckIn: "09:10", CheckOut: "18:10", Date: &d, Pattern: reconcile.TodayComplete}},
			},
		},
		{Site: "smc", Sheet: "03.05"},
	}
	problems := []attendance.Problem{
		{Name: "Lee|Park", Date: target, Issue: attendance.IssueMissingCheckOut, RawCheckIn: "08:55"},
		{Name: "Kang", Date: target, Issue: attendance.IssueMalformedCheckIn, RawCheckIn: "8시"},
		{Name: "Yoon", Date: target, Issue: attendance.IssueMissingCheckOut, RawCheckIn: "10:00"},
	}

	s := Build(target, pattern, fills, problems)
	s.RunID = "a1b2c3d"
	return s
}

func TestBuild(t *testing.T) {
	s := testSummary()

	assert.True(t, target.Equal(s.Date))
	assert.InDelta(t, 22.0/3.0, s.Average, 1e-9)
	require.Len(t, s.Days, 3)
	require.Len(t, s.Holidays(), 1)
	assert.Equal(t, 2, s.Holidays()[0].Count)

	require.Len(t, s.Sites, 2)
	yj := s.Sites[0]
	assert.Equal(t, []PatternCount{
		{Pattern: reconcile.TodayComplete, Count: 2},
		{Pattern: reconcile.TodayCheckInOnly, Count: 1},
		{Pattern: reconcile.NoData, Count: 1},
	}, yj.Patterns)
	require.Len(t, yj.People, 4)
	assert.Equal(t, "2024-03-05", yj.People[0].Date)
	assert.Empty(t, yj.People[2].Date)
	assert.Empty(t, s.Sites[1].Patterns)

	assert.Equal(t, []IssueCount{
		{Issue: attendance.IssueMalformedCheckIn, Count: 1},
		{Issue: attendance.IssueMissingCheckOut, Count: 2},
	}, s.Issues)
}

func TestFileName(t *testing.T) {
	s := testSummary()
	assert.Equal(t, "clockfill-2024-03-05-a1b2c3d.pdf", s.FileName(".pdf"))

	s.RunID = ""
	assert.Equal(t, "clockfill-2024-03-05.html", s.FileName(".html"))
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testSummary())

	assert.Contains(t, md, "# Attendance fill 2024-03-05")
	assert.Contains(t, md, "## 여주 (sheet 03.05)")
	assert.Contains(t, md, "| 김철수 | 09:00 | 18:00 | 2024-03-05 | today_complete |")
	assert.Contains(t, md, `| Lee\|Park | 08:55 | - |`, "pipes in names are escaped")
	assert.Contains(t, md, "Not in raw data: Ghost")
	assert.Contains(t, md, "## Problems (3)")
	assert.Contains(t, md, "| Kang | 2024-03-05 | malformed check-in | 8시 | - |")
}

func TestRenderHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.html")
	require.NoError(t, RenderHTML(testSummary(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>김철수</td>")
	assert.Contains(t, html, "<td>Lee|Park</td>")
}

func TestRenderPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.pdf")

	require.NoError(t, RenderPDF(testSummary(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestRenderPDF_EmptySummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	require.NoError(t, RenderPDF(Summary{Date: target}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
