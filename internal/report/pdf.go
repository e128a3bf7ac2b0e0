package report

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	pdfHeaderColor = props.Color{Red: 50, Green: 50, Blue: 50}
	pdfMutedColor  = props.Color{Red: 120, Green: 120, Blue: 120}
	pdfLineColor   = props.Color{Red: 200, Green: 200, Blue: 200}
	pdfWarnColor   = props.Color{Red: 190, Green: 90, Blue: 0}
)

// RenderPDF writes the summary as an A4 PDF to path.
func RenderPDF(s Summary, path string) error {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	title := "Attendance fill " + s.Date.Format("2006-01-02")
	m.AddRow(14,
		text.NewCol(12, title, props.Text{
			Style: fontstyle.Bold,
			Size:  16,
			Color: &pdfHeaderColor,
		}),
	)
	subtitle := fmt.Sprintf("average %.2f, holiday threshold %.2f", s.Average, s.Threshold)
	if s.RunID != "" {
		subtitle = "run " + s.RunID + ", " + subtitle
	}
	m.AddRow(8,
		text.NewCol(12, subtitle, props.Text{
			Size:  10,
			Color: &pdfMutedColor,
		}),
	)
	if hs := s.Holidays(); len(hs) > 0 {
		parts := make([]string, len(hs))
		for i, h := range hs {
			parts[i] = fmt.Sprintf("%s (%d)", h.Date.Format("01-02"), h.Count)
		}
		m.AddRow(6,
			text.NewCol(12, "Holidays: "+strings.Join(parts, ", "), props.Text{
				Size:  9,
				Color: &pdfMutedColor,
			}),
		)
	}
	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(4) // spacer

	for _, site := range s.Sites {
		m.AddRow(8,
			text.NewCol(8, fmt.Sprintf("%s, sheet %s", site.Site, site.Sheet), props.Text{
				Style: fontstyle.Bold,
				Size:  11,
				Color: &pdfHeaderColor,
			}),
			text.NewCol(4, fmt.Sprintf("%d cells filled", site.Filled), props.Text{
				Style: fontstyle.Bold,
				Size:  11,
				Align: align.Right,
				Color: &pdfHeaderColor,
			}),
		)

		for _, pc := range site.Patterns {
			m.AddRow(5,
				text.NewCol(9, "  "+string(pc.Pattern), props.Text{Size: 9}),
				text.NewCol(3, fmt.Sprintf("%d", pc.Count), props.Text{
					Size:  9,
					Align: align.Right,
				}),
			)
		}

		for _, p := range site.People {
			m.AddRow(5,
				text.NewCol(4, "    "+p.Name, props.Text{Size: 8, Color: &pdfMutedColor}),
				text.NewCol(2, orDash(p.CheckIn), props.Text{Size: 8, Color: &pdfMutedColor}),
				text.NewCol(2, orDash(p.CheckOut), props.Text{Size: 8, Color: &pdfMutedColor}),
				text.NewCol(4, string(p.Pattern), props.Text{
					Size:  8,
					Align: align.Right,
					Color: &pdfMutedColor,
				}),
			)
		}

		if len(site.Missing) > 0 {
			m.AddRow(6,
				text.NewCol(12, "  Not in raw data: "+strings.Join(site.Missing, ", "), props.Text{
					Size:  9,
					Color: &pdfWarnColor,
				}),
			)
		}

		m.AddRow(4)
	}

	m.AddRow(4, line.NewCol(12, props.Line{Color: &pdfLineColor}))
	m.AddRow(10,
		text.NewCol(9, "Problems for review", props.Text{
			Style: fontstyle.Bold,
			Size:  12,
			Color: &pdfHeaderColor,
		}),
		text.NewCol(3, fmt.Sprintf("%d", len(s.Problems)), props.Text{
			Style: fontstyle.Bold,
			Size:  12,
			Align: align.Right,
			Color: &pdfHeaderColor,
		}),
	)
	for _, ic := range s.Issues {
		m.AddRow(5,
			text.NewCol(9, "  "+string(ic.Issue), props.Text{Size: 9}),
			text.NewCol(3, fmt.Sprintf("%d", ic.Count), props.Text{
				Size:  9,
				Align: align.Right,
			}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}

	return doc.Save(path)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
