package cli

import (
	"fmt"
	"strings"

	"github.com/Flyrell/clockfill/internal/attendance"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	nameColWidth  = 16
	dateColWidth  = 10
	issueColWidth = 32
	rawColWidth   = 16
	fixedColWidth = 13
	detailLines   = 7
)

type reviewModel struct {
	all        []attendance.Problem
	rows       []attendance.Problem // rows passing the filter
	filter     int                  // index into attendance.Issues, -1 = all
	cursor     int
	scrollY    int
	termWidth  int
	termHeight int
	detail     bool
	source     string
}

func newReviewModel(problems []attendance.Problem, source string) reviewModel {
	return reviewModel{
		all:        problems,
		rows:       problems,
		filter:     -1,
		termWidth:  120,
		termHeight: 40,
		source:     source,
	}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.rows)-1, 0)
		case "tab":
			m = m.nextFilter()
		case "enter":
			m.detail = !m.detail
		}
	}
	return m.ensureCursorVisible(), nil
}

func (m reviewModel) View() string {
	var b strings.Builder
	b.WriteString(renderProblemTable(m.rows, m.scrollY, m.visibleRows(), m.cursor))

	if m.detail && m.cursor < len(m.rows) {
		b.WriteString("\n")
		b.WriteString(renderProblemDetail(m.rows[m.cursor]))
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("%s  |  %d/%d  |  filter: %s  |  ↑/↓ navigate  |  tab filter  |  enter details  |  q quit",
		m.source, m.cursor+1, len(m.rows), m.filterLabel())
	if len(m.rows) == 0 {
		footer = fmt.Sprintf("%s  |  no rows  |  filter: %s  |  tab filter  |  q quit", m.source, m.filterLabel())
	}
	b.WriteString(footerStyle.Render(footer))
	b.WriteString("\n")
	return b.String()
}

func (m reviewModel) visibleRows() int {
	// title, header, separator, blank line and footer
	reserved := 5
	if m.detail {
		reserved += detailLines
	}
	available := m.termHeight - reserved
	if available < 1 {
		available = 1
	}
	if available > len(m.rows) {
		return len(m.rows)
	}
	return available
}

// ensureCursorVisible adjusts scroll so the cursor is within the visible rows.
func (m reviewModel) ensureCursorVisible() reviewModel {
	visible := m.visibleRows()
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	}
	if visible > 0 && m.cursor >= m.scrollY+visible {
		m.scrollY = m.cursor - visible + 1
	}
	if maxScroll := len(m.rows) - visible; m.scrollY > maxScroll {
		m.scrollY = max(maxScroll, 0)
	}
	return m
}

// nextFilter moves to the next issue that has rows, wrapping to "all".
func (m reviewModel) nextFilter() reviewModel {
	for range len(attendance.Issues) + 1 {
		m.filter++
		if m.filter >= len(attendance.Issues) {
			m.filter = -1
		}
		rows := m.filtered()
		if m.filter == -1 || len(rows) > 0 {
			m.rows = rows
			break
		}
	}
	m.cursor = 0
	m.scrollY = 0
	return m
}

func (m reviewModel) filtered() []attendance.Problem {
	if m.filter < 0 {
		return m.all
	}
	want := attendance.Issues[m.filter]
	var out []attendance.Problem
	for _, p := range m.all {
		if p.Issue == want {
			out = append(out, p)
		}
	}
	return out
}

func (m reviewModel) filterLabel() string {
	if m.filter < 0 {
		return "all"
	}
	return string(attendance.Issues[m.filter])
}

// renderProblemTable renders visible rows starting at scrollY. cursor < 0
// renders without a selection.
func renderProblemTable(problems []attendance.Problem, scrollY, visible, cursor int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("--- %d rows need review ---", len(problems))))
	b.WriteString("\n")

	header := strings.Join([]string{
		padRight("Name", nameColWidth),
		padRight("Date", dateColWidth),
		padRight("Issue", issueColWidth),
		padRight("Check-in", rawColWidth),
		padRight("Check-out", rawColWidth),
		padRight("Corrected", fixedColWidth),
	}, " | ")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", lipgloss.Width(header)))
	b.WriteString("\n")

	end := min(scrollY+visible, len(problems))
	for i := scrollY; i < end; i++ {
		p := problems[i]
		fixed := padRight(correctedText(p), fixedColWidth)
		if p.HasCorrection() {
			fixed = fixedStyle.Render(fixed)
		}
		line := strings.Join([]string{
			padRight(p.Name, nameColWidth),
			padRight(p.Date.Format("2006-01-02"), dateColWidth),
			padRight(string(p.Issue), issueColWidth),
			padRight(p.RawCheckIn, rawColWidth),
			padRight(p.RawCheckOut, rawColWidth),
			fixed,
		}, " | ")
		if i == cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func renderProblemDetail(p attendance.Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(p.Name), Silent(p.Date.Format("2006-01-02 Mon")))
	fmt.Fprintf(&b, "  issue:     %s\n", Warning(string(p.Issue)))
	fmt.Fprintf(&b, "  check-in:  %s\n", orDash(p.RawCheckIn))
	fmt.Fprintf(&b, "  check-out: %s\n", orDash(p.RawCheckOut))
	fmt.Fprintf(&b, "  corrected: %s\n", orDash(correctedText(p)))
	return b.String()
}

func correctedText(p attendance.Problem) string {
	if !p.HasCorrection() {
		return ""
	}
	return orDash(p.FixedCheckIn) + "~" + orDash(p.FixedCheckOut)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// padRight pads or truncates s to width terminal cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > width {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + strings.Repeat(" ", width-used)
}
