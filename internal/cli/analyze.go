package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/calendar"
	"github.com/Flyrell/clockfill/internal/runlog"
	"github.com/spf13/cobra"
)

var analyzeCmd = LeafCommand{
	Use:   "analyze",
	Short: "Show the work pattern inferred from a raw attendance file",
	StrFlags: []StringFlag{
		{Name: "raw", Usage: "raw attendance file (.xlsx, .xls or .csv)"},
		{Name: "date", Usage: "also show the previous workday of this date"},
		configFlag,
	},
	BoolFlags: []BoolFlag{verboseFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		rawFlag, _ := cmd.Flags().GetString("raw")
		dateFlag, _ := cmd.Flags().GetString("date")
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		return runAnalyze(cmd, homeDir, rawFlag, dateFlag, configPath, verbose)
	},
}.Build()

func runAnalyze(cmd *cobra.Command, homeDir, rawFlag, dateFlag, configPath string, verbose bool) error {
	if rawFlag == "" {
		return fmt.Errorf("--raw is required")
	}

	cfg, err := loadConfig(homeDir, configPath)
	if err != nil {
		return err
	}

	logger, _ := newLogger(cmd.ErrOrStderr(), verbose)
	obs := runlog.NewObserver(logger)

	rows, err := loadRows(rawFlag, cfg)
	if err != nil {
		return err
	}

	pattern := attendance.ClassifyDays(rows, attendance.PatternOptions{
		HolidayFactor:     cfg.HolidayFactor,
		MinimumAttendance: cfg.MinimumAttendance,
	}, obs)

	out := cmd.OutOrStdout()
	if len(pattern.Counts) == 0 {
		_, _ = fmt.Fprintln(out, Text("No attendance found in "+rawFlag+"."))
		return nil
	}

	printPattern(out, pattern)

	if dateFlag != "" {
		target, err := calendar.ParseDate(dateFlag)
		if err != nil {
			return fmt.Errorf("--date: %w", err)
		}
		prev, ok := attendance.PreviousWorkday(target, pattern, cfg.LookbackDays)
		if ok {
			_, _ = fmt.Fprintf(out, "\n%s\n", Text(fmt.Sprintf("Previous workday of %s: %s",
				target.Format("2006-01-02"), Primary(prev.Format("2006-01-02 Mon")))))
		} else {
			_, _ = fmt.Fprintf(out, "\n%s\n", Warning(fmt.Sprintf("No workday within %d days before %s",
				cfg.LookbackDays, target.Format("2006-01-02"))))
		}
	}
	return nil
}

func printPattern(w io.Writer, p attendance.WorkPattern) {
	_, _ = fmt.Fprintf(w, "%s\n", Text(fmt.Sprintf("Average attendance %s, holiday threshold %s",
		Primary(fmt.Sprintf("%.1f", p.Average)), Primary(fmt.Sprintf("%.1f", p.Threshold)))))
	_, _ = fmt.Fprintf(w, "%s\n\n", Text(fmt.Sprintf("%d workdays, %d holidays, %d weekends",
		len(p.Workdays), len(p.Holidays), len(p.Weekends))))
	if p.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "%s\n\n", Warning(fmt.Sprintf("%d rows skipped for unreadable dates", p.Skipped)))
	}

	for _, d := range p.Dates() {
		kind := p.Kind(d)
		label := padRight(kind.String(), 8)
		switch kind {
		case attendance.DayHoliday:
			label = Warning(label)
		case attendance.DayWeekend:
			label = Silent(label)
		default:
			label = Info(label)
		}
		_, _ = fmt.Fprintf(w, "  %s  %s  %4d\n", d.Format("2006-01-02 Mon"), label, p.Counts[d])
	}
}
