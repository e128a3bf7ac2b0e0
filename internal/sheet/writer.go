package sheet

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/reconcile"
	"github.com/xuri/excelize/v2"
)

// Resolver picks the attendance to write for one name.
type Resolver interface {
	Resolve(name string, today, yesterday *attendance.Index) reconcile.Resolution
}

// Options configures a Writer.
type Options struct {
	SheetNameFormat string
	Logger          *slog.Logger
}

// Writer fills one site's timesheet workbook.
type Writer struct {
	path   string
	site   config.Site
	format string
	logger *slog.Logger
}

func NewWriter(path string, site config.Site, opts Options) *Writer {
	format := opts.SheetNameFormat
	if format == "" {
		format = "01.02"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		path:   path,
		site:   site,
		format: format,
		logger: logger.With("site", site.Name),
	}
}

// SheetName is the name of the sheet holding target's data.
func (w *Writer) SheetName(target time.Time) string {
	return target.Format(w.format)
}

// PersonResult is the resolution written for one name cell.
type PersonResult struct {
	Name string
	Cell string
	reconcile.Resolution
}

// FillReport summarizes one Fill.
type FillReport struct {
	Site        string
	Sheet       string
	Created     bool
	Cleared     int
	Processed   int
	Filled      int
	Missing     []string
	Resolutions []PersonResult
}

// Fill prepares the target date's sheet and writes every resolvable name.
func (w *Writer) Fill(target time.Time, today, yesterday *attendance.Index, engine Resolver) (FillReport, error) {
	report := FillReport{Site: w.site.Name, Sheet: w.SheetName(target)}

	blocks, err := w.blocks()
	if err != nil {
		return report, err
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return report, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	prev, created, err := w.prepareSheet(f, report.Sheet)
	if err != nil {
		return report, err
	}
	report.Created = created

	if report.Cleared, err = w.clear(f, report.Sheet); err != nil {
		return report, err
	}

	dateStr := target.Format("2006-01-02")
	for _, ref := range w.site.ResetDateCells {
		if err := f.SetCellStr(report.Sheet, ref, dateStr); err != nil {
			w.logger.Warn("reset date not written", "cell", ref, "err", err)
		}
	}

	if co := w.site.CarryOver; co != nil && prev != "" {
		formula := fmt.Sprintf("'%s'!%s", strings.ReplaceAll(prev, "'", "''"), co.Source)
		for _, ref := range co.Cells {
			if err := f.SetCellFormula(report.Sheet, ref, formula); err != nil {
				w.logger.Warn("carry-over formula not written", "cell", ref, "err", err)
			}
		}
	}

	for _, b := range blocks {
		for i := 0; i < b.names.rows(); i++ {
			report.Processed++

			nameCell := b.names.at(i)
			raw, err := f.GetCellValue(report.Sheet, nameCell)
			if err != nil {
				return report, fmt.Errorf("read %s: %w", nameCell, err)
			}
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}

			_, inToday := today.Lookup(name)
			_, inYesterday := yesterday.Lookup(name)
			if !inToday && !inYesterday {
				w.logger.Warn("name not found in raw data", "name", name, "cell", nameCell)
				report.Missing = append(report.Missing, name)
				continue
			}

			res := engine.Resolve(name, today, yesterday)
			report.Resolutions = append(report.Resolutions, PersonResult{Name: name, Cell: nameCell, Resolution: res})

			if res.CheckIn != "" {
				if err := f.SetCellStr(report.Sheet, b.checkIn.at(i), res.CheckIn); err != nil {
					return report, err
				}
				report.Filled++
			}
			if res.CheckOut != "" {
				if err := f.SetCellStr(report.Sheet, b.checkOut.at(i), res.CheckOut); err != nil {
					return report, err
				}
				report.Filled++
			}
			if res.Pattern.HasData() {
				w.logger.Info("resolved", "name", name, "attendance", res.String())
			} else {
				w.logger.Debug("resolved", "name", name, "attendance", res.String())
			}
		}
	}

	if err := f.Save(); err != nil {
		return report, fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	w.logger.Info("workbook filled", "sheet", report.Sheet, "processed", report.Processed, "filled", report.Filled)
	return report, nil
}

// prepareSheet makes sure a sheet called name exists, copying the last
// sheet when it does not. It returns the name of the sheet before it, or ""
// when name is the first sheet.
func (w *Writer) prepareSheet(f *excelize.File, name string) (prev string, created bool, err error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return "", false, fmt.Errorf("look up sheet %q: %w", name, err)
	}

	if idx == -1 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", false, fmt.Errorf("workbook %s has no sheets", w.path)
		}
		last := sheets[len(sheets)-1]
		lastIdx, err := f.GetSheetIndex(last)
		if err != nil {
			return "", false, err
		}
		if idx, err = f.NewSheet(name); err != nil {
			return "", false, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := f.CopySheet(lastIdx, idx); err != nil {
			return "", false, fmt.Errorf("copy sheet %q to %q: %w", last, name, err)
		}
		w.logger.Info("sheet copied", "from", last, "to", name)
		created = true
	} else {
		w.logger.Info("sheet exists, reusing", "sheet", name)
	}
	f.SetActiveSheet(idx)

	sheets := f.GetSheetList()
	for i, s := range sheets {
		if s == name && i > 0 {
			prev = sheets[i-1]
		}
	}
	return prev, created, nil
}

func (w *Writer) clear(f *excelize.File, sheet string) (int, error) {
	cleared := 0
	for _, ref := range w.site.ClearRanges {
		r, err := parseRange(ref)
		if err != nil {
			return cleared, err
		}
		for _, c := range r.cells() {
			if err := f.SetCellFormula(sheet, c, ""); err != nil {
				return cleared, err
			}
			if err := f.SetCellValue(sheet, c, nil); err != nil {
				return cleared, err
			}
			cleared++
		}
	}
	w.logger.Debug("ranges cleared", "cells", cleared)
	return cleared, nil
}

func (w *Writer) blocks() ([]block, error) {
	out := make([]block, 0, len(w.site.Blocks))
	for _, b := range w.site.Blocks {
		pb, err := parseBlock(b.Names, b.CheckIn, b.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", w.site.Name, err)
		}
		out = append(out, pb)
	}
	return out, nil
}

// CorrectionReport summarizes ApplyCorrections.
type CorrectionReport struct {
	Applied int
	Skipped int
	Unknown []string
}

// ApplyCorrections writes the clerk's non-empty corrected values beside the
// matching name on sheetName. Names match exactly after trimming. A name
// that is not on the sheet is reported and the pass continues.
func (w *Writer) ApplyCorrections(sheetName string, problems []attendance.Problem) (CorrectionReport, error) {
	var report CorrectionReport

	blocks, err := w.blocks()
	if err != nil {
		return report, err
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return report, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx == -1 {
		return report, fmt.Errorf("workbook %s has no sheet %q", w.path, sheetName)
	}

	for _, p := range problems {
		fixedIn := strings.TrimSpace(p.FixedCheckIn)
		fixedOut := strings.TrimSpace(p.FixedCheckOut)
		if fixedIn == "" && fixedOut == "" {
			report.Skipped++
			continue
		}

		name := strings.TrimSpace(p.Name)
		b, row, found, err := findName(f, sheetName, blocks, name)
		if err != nil {
			return report, err
		}
		if !found {
			w.logger.Warn("corrected name not on sheet", "name", name, "sheet", sheetName)
			report.Unknown = append(report.Unknown, name)
			continue
		}

		if fixedIn != "" {
			if err := f.SetCellStr(sheetName, b.checkIn.at(row), fixedIn); err != nil {
				return report, err
			}
			report.Applied++
		}
		if fixedOut != "" {
			if err := f.SetCellStr(sheetName, b.checkOut.at(row), fixedOut); err != nil {
				return report, err
			}
			report.Applied++
		}
		w.logger.Info("correction applied", "name", name, "check_in", fixedIn, "check_out", fixedOut)
	}

	if err := f.Save(); err != nil {
		return report, fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return report, nil
}

func findName(f *excelize.File, sheet string, blocks []block, name string) (block, int, bool, error) {
	for _, b := range blocks {
		for i := 0; i < b.names.rows(); i++ {
			v, err := f.GetCellValue(sheet, b.names.at(i))
			if err != nil {
				return block{}, 0, false, err
			}
			if strings.TrimSpace(v) == name {
				return b, i, true, nil
			}
		}
	}
	return block{}, 0, false, nil
}
