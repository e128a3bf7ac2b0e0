package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/calendar"
	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/hashutil"
	"github.com/Flyrell/clockfill/internal/reconcile"
	"github.com/Flyrell/clockfill/internal/report"
	"github.com/Flyrell/clockfill/internal/runlog"
	"github.com/Flyrell/clockfill/internal/sheet"
	"github.com/spf13/cobra"
)

var runCmd = LeafCommand{
	Use:   "run",
	Short: "Fill the site workbooks for a date or a range of dates",
	Long: `Reads the raw attendance log, works out each person's check-in and
check-out for the target date and writes them into a new dated sheet of
every site workbook. Rows that need a human are written to the problem file.`,
	StrFlags: []StringFlag{
		{Name: "raw", Usage: "raw attendance file (.xlsx, .xls or .csv)"},
		{Name: "date", Usage: "target date (today, yesterday, 2024-03-05, last friday, ...)"},
		{Name: "from", Usage: "first date of a range (requires --to)"},
		{Name: "to", Usage: "last date of a range (requires --from)"},
		{Name: "every", Usage: "which days of the range to fill (daily, weekdays, every monday, or an RRULE)"},
		{Name: "report", Usage: "write a summary report: a .pdf or .html path, or just pdf/html"},
		configFlag,
	},
	SliceFlags: []StringSliceFlag{
		{Name: "site", Usage: "site workbook as name=path (repeatable)"},
	},
	BoolFlags: []BoolFlag{verboseFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		opts := runOptions{}
		opts.raw, _ = cmd.Flags().GetString("raw")
		opts.date, _ = cmd.Flags().GetString("date")
		opts.from, _ = cmd.Flags().GetString("from")
		opts.to, _ = cmd.Flags().GetString("to")
		opts.every, _ = cmd.Flags().GetString("every")
		opts.report, _ = cmd.Flags().GetString("report")
		opts.configPath, _ = cmd.Flags().GetString("config")
		opts.sites, _ = cmd.Flags().GetStringArray("site")
		opts.verbose, _ = cmd.Flags().GetBool("verbose")

		return runRun(cmd, homeDir, opts, promptKitFor(cmd.OutOrStdout(), false), time.Now)
	},
}.Build()

type runOptions struct {
	raw        string
	date       string
	from       string
	to         string
	every      string
	report     string
	configPath string
	sites      []string
	verbose    bool
}

func runRun(cmd *cobra.Command, homeDir string, opts runOptions, pk PromptKit, nowFn func() time.Time) error {
	cfg, err := loadConfig(homeDir, opts.configPath)
	if err != nil {
		return err
	}

	if err := askRunInputs(&opts, cfg, pk); err != nil {
		return err
	}
	if opts.raw == "" {
		return fmt.Errorf("--raw is required")
	}

	startedAt := nowFn()
	days, err := runDays(opts, startedAt)
	if err != nil {
		return err
	}
	if opts.report != "" {
		if _, err := reportFormat(opts.report); err != nil {
			return err
		}
	}

	workbooks, err := parseSiteFlags(opts.sites, cfg)
	if err != nil {
		return err
	}
	if len(workbooks) == 0 {
		return fmt.Errorf("no workbooks to fill (use --site name=path, sites: %s)", strings.Join(cfg.SiteNames(), ", "))
	}

	logger, handler := newLogger(cmd.ErrOrStderr(), opts.verbose)
	obs := runlog.NewObserver(logger)

	rows, err := loadRows(opts.raw, cfg)
	if err != nil {
		return err
	}
	logger.Info("raw data loaded", "file", opts.raw, "rows", len(rows))

	pattern := attendance.ClassifyDays(rows, attendance.PatternOptions{
		HolidayFactor:     cfg.HolidayFactor,
		MinimumAttendance: cfg.MinimumAttendance,
	}, obs)
	engine := reconcile.NewEngine(reconcile.Options{NightShiftHour: cfg.NightShiftHour})
	runID := hashutil.RunID(days[0], startedAt, opts.raw)
	out := cmd.OutOrStdout()

	var (
		problems  []attendance.Problem
		failed    []error
		lastSheet string
	)
	for _, day := range days {
		dayStr := day.Format("2006-01-02")
		prev := attendance.PreviousWorkdayOrSelf(day, pattern, cfg.LookbackDays, obs)
		logger.Info("reconciling", "date", dayStr, "previous_workday", prev.Format("2006-01-02"))

		result := attendance.Validate(rows, day, attendance.ValidateOptions{OvernightGapHours: cfg.OvernightGapHours})
		if result.HasProblems() {
			logger.Warn("rows need review", "date", dayStr, "problems", len(result.Problems), "valid", len(result.Valid))
		}
		problems = append(problems, result.Problems...)

		today := attendance.BuildIndex(rows, day)
		yesterday := attendance.BuildIndex(rows, prev)

		var fills []sheet.FillReport
		for _, wb := range workbooks {
			w := sheet.NewWriter(wb.path, wb.site, sheet.Options{SheetNameFormat: cfg.SheetNameFormat, Logger: logger})
			fill, err := w.Fill(day, today, yesterday, engine)
			if err != nil {
				logger.Error("workbook not filled", "site", wb.site.Name, "date", dayStr, "err", err)
				failed = append(failed, fmt.Errorf("%s %s: %w", wb.site.Name, dayStr, err))
				continue
			}
			fills = append(fills, fill)
			lastSheet = fill.Sheet
			_, _ = fmt.Fprintf(out, "%s %s: %s cells filled for %d names",
				Primary(wb.site.Name), Info(fill.Sheet), Primary(fmt.Sprintf("%d", fill.Filled)), len(fill.Resolutions))
			if len(fill.Missing) > 0 {
				_, _ = fmt.Fprintf(out, ", %s", Warning(fmt.Sprintf("%d not in raw data", len(fill.Missing))))
			}
			_, _ = fmt.Fprintln(out)
		}

		if opts.report != "" {
			s := report.Build(day, pattern, fills, result.Problems)
			s.RunID = runID
			path := reportPath(opts.report, s, len(days) > 1)
			if err := renderReport(s, path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("Report written to %s", Primary(path))))
		}
	}

	state := &config.RunState{
		RunID:      runID,
		Date:       days[len(days)-1].Format("2006-01-02"),
		Sheet:      lastSheet,
		Workbooks:  make(map[string]string, len(workbooks)),
		Problems:   len(problems),
		FinishedAt: nowFn(),
	}
	for _, wb := range workbooks {
		state.Workbooks[wb.site.Name] = absPath(wb.path)
	}

	if len(problems) > 0 {
		if err := sheet.WriteProblems(cfg.ProblemFile, problems); err != nil {
			return err
		}
		state.ProblemFile = absPath(cfg.ProblemFile)
		_, _ = fmt.Fprintf(out, "%s\n", Warning(fmt.Sprintf(
			"%d rows need review: fill the corrected columns in %s, then run 'clockfill retry'",
			len(problems), cfg.ProblemFile)))
	}

	if err := config.WriteState(homeDir, state); err != nil {
		return fmt.Errorf("save run state: %w", err)
	}

	runlog.Success(logger, "run finished", "run", runID,
		"warnings", handler.Counts().Warnings(), "errors", handler.Counts().Errors())
	return errors.Join(failed...)
}

// askRunInputs fills in what the flags left out when prompts are available.
func askRunInputs(opts *runOptions, cfg *config.Config, pk PromptKit) error {
	if pk.Prompt == nil {
		return nil
	}

	if opts.raw == "" {
		raw, err := pk.Prompt("Raw attendance file")
		if err != nil {
			return err
		}
		opts.raw = strings.TrimSpace(raw)
	}

	if opts.date == "" && opts.from == "" && opts.to == "" {
		date, err := pk.Prompt("Target date (empty for today)")
		if err != nil {
			return err
		}
		opts.date = strings.TrimSpace(date)
	}

	if len(opts.sites) == 0 && pk.MultiSelect != nil {
		names := cfg.SiteNames()
		picked, err := pk.MultiSelect("Sites to fill", names)
		if err != nil {
			return err
		}
		for _, i := range picked {
			path, err := pk.Prompt(fmt.Sprintf("Workbook for %s", names[i]))
			if err != nil {
				return err
			}
			if path = strings.TrimSpace(path); path != "" {
				opts.sites = append(opts.sites, names[i]+"="+path)
			}
		}
	}
	return nil
}

// runDays returns the dates to fill: one date, or every matching date of
// the --from/--to range. Without either it is today.
func runDays(opts runOptions, now time.Time) ([]time.Time, error) {
	hasRange := opts.from != "" || opts.to != ""
	if hasRange && opts.date != "" {
		return nil, fmt.Errorf("--date and --from/--to are mutually exclusive")
	}
	if opts.every != "" && !hasRange {
		return nil, fmt.Errorf("--every requires --from and --to")
	}

	if hasRange {
		if opts.from == "" || opts.to == "" {
			return nil, fmt.Errorf("--from and --to must be given together")
		}
		from, err := calendar.ParseDate(opts.from)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := calendar.ParseDate(opts.to)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		days, err := calendar.Days(from, to, opts.every)
		if err != nil {
			return nil, err
		}
		if len(days) == 0 {
			return nil, fmt.Errorf("no dates between %s and %s match %q", opts.from, opts.to, opts.every)
		}
		return days, nil
	}

	if opts.date == "" {
		return []time.Time{attendance.Day(now)}, nil
	}
	d, err := calendar.ParseDate(opts.date)
	if err != nil {
		return nil, fmt.Errorf("--date: %w", err)
	}
	return []time.Time{d}, nil
}

// reportFormat returns "pdf" or "html" for a report path or bare format name.
func reportFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		ext = strings.ToLower(path)
	}
	switch ext {
	case "pdf":
		return "pdf", nil
	case "html", "htm":
		return "html", nil
	}
	return "", fmt.Errorf("unsupported report format %q (use .pdf or .html)", path)
}

// reportPath resolves the report flag for one summary. A bare format name
// gets the default file name; a path gets the date appended when a range
// produces several reports.
func reportPath(flag string, s report.Summary, perDay bool) string {
	if filepath.Ext(flag) == "" {
		format, _ := reportFormat(flag)
		return s.FileName("." + format)
	}
	if !perDay {
		return flag
	}
	ext := filepath.Ext(flag)
	return strings.TrimSuffix(flag, ext) + "-" + s.Date.Format("2006-01-02") + ext
}

func renderReport(s report.Summary, path string) error {
	format, err := reportFormat(path)
	if err != nil {
		return err
	}
	if format == "pdf" {
		return report.RenderPDF(s, path)
	}
	return report.RenderHTML(s, path)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
