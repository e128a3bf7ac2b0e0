package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/Flyrell/clockfill/internal/config"
	"github.com/spf13/cobra"
)

var configPathCmd = LeafCommand{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.Path(homeDir))
		return nil
	},
}.Build()

var configShowCmd = LeafCommand{
	Use:   "show",
	Short: "Show the effective configuration",
	StrFlags: []StringFlag{
		configFlag,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath, _ := cmd.Flags().GetString("config")
		return runConfigShow(cmd, homeDir, configPath)
	},
}.Build()

func runConfigShow(cmd *cobra.Command, homeDir, configPath string) error {
	cfg, err := loadConfig(homeDir, configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	field := func(name string, value any) {
		_, _ = fmt.Fprintf(out, "  %s %v\n", padRight(name+":", 20), value)
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render("Detection"))
	field("holiday_factor", cfg.HolidayFactor)
	field("minimum_attendance", cfg.MinimumAttendance)
	field("lookback_days", cfg.LookbackDays)
	field("overnight_gap_hours", cfg.OvernightGapHours)
	field("night_shift_hour", cfg.NightShiftHour)

	_, _ = fmt.Fprintln(out, headerStyle.Render("Files"))
	field("csv_encoding", cfg.CSVEncoding)
	field("problem_file", cfg.ProblemFile)
	field("sheet_name_format", cfg.SheetNameFormat)

	for _, s := range cfg.Sites {
		_, _ = fmt.Fprintln(out, headerStyle.Render("Site "+s.Name))
		for i, b := range s.Blocks {
			field(fmt.Sprintf("block %d", i+1), fmt.Sprintf("%s -> %s, %s", b.Names, b.CheckIn, b.CheckOut))
		}
		field("clear", strings.Join(s.ClearRanges, ", "))
		field("date cells", strings.Join(s.ResetDateCells, ", "))
		if s.CarryOver != nil {
			field("carry over", fmt.Sprintf("%s <- previous sheet %s", strings.Join(s.CarryOver.Cells, ", "), s.CarryOver.Source))
		}
	}
	return nil
}
