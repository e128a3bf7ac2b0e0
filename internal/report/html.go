package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Markdown renders the summary as a Markdown document with tables.
func Markdown(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Attendance fill %s\n\n", s.Date.Format("2006-01-02"))
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run `%s`. ", s.RunID)
	}
	fmt.Fprintf(&b, "Average attendance %.2f, holiday threshold %.2f.\n\n", s.Average, s.Threshold)

	if len(s.Days) > 0 {
		b.WriteString("## Work pattern\n\n| Date | Check-ins | Kind |\n|---|---:|---|\n")
		for _, d := range s.Days {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", d.Date.Format("2006-01-02"), d.Count, d.Kind)
		}
		b.WriteString("\n")
	}

	for _, site := range s.Sites {
		fmt.Fprintf(&b, "## %s (sheet %s)\n\n", cellText(site.Site), cellText(site.Sheet))
		fmt.Fprintf(&b, "%d rows processed, %d cells filled.\n\n", site.Processed, site.Filled)

		if len(site.People) > 0 {
			b.WriteString("| Name | Check-in | Check-out | Date | Rule |\n|---|---|---|---|---|\n")
			for _, p := range site.People {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
					cellText(p.Name), orDash(p.CheckIn), orDash(p.CheckOut), orDash(p.Date), p.Pattern)
			}
			b.WriteString("\n")
		}
		if len(site.Missing) > 0 {
			fmt.Fprintf(&b, "Not in raw data: %s\n\n", cellText(strings.Join(site.Missing, ", ")))
		}
	}

	fmt.Fprintf(&b, "## Problems (%d)\n\n", len(s.Problems))
	if len(s.Problems) > 0 {
		b.WriteString("| Name | Date | Issue | Check-in | Check-out |\n|---|---|---|---|---|\n")
		for _, p := range s.Problems {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cellText(p.Name), p.Date.Format("2006-01-02"), p.Issue,
				orDash(cellText(p.RawCheckIn)), orDash(cellText(p.RawCheckOut)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts the Markdown summary to a standalone HTML page at path.
func RenderHTML(s Summary, path string) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(s)), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Attendance fill %s</title>\n", s.Date.Format("2006-01-02"))
	page.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.2em .6em}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return os.WriteFile(path, page.Bytes(), 0644)
}

// cellText keeps a value from breaking out of a Markdown table cell.
func cellText(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
