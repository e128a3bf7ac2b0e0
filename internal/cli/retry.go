package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/runlog"
	"github.com/Flyrell/clockfill/internal/sheet"
	"github.com/spf13/cobra"
)

var retryCmd = LeafCommand{
	Use:   "retry",
	Short: "Apply the corrections from the problem file to the last run's workbooks",
	StrFlags: []StringFlag{
		{Name: "problems", Usage: "problem file (default: the one written by the last run)"},
		configFlag,
	},
	BoolFlags: []BoolFlag{yesFlag, verboseFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		problemsFlag, _ := cmd.Flags().GetString("problems")
		configPath, _ := cmd.Flags().GetString("config")
		yes, _ := cmd.Flags().GetBool("yes")
		verbose, _ := cmd.Flags().GetBool("verbose")

		return runRetry(cmd, homeDir, problemsFlag, configPath, verbose, promptKitFor(cmd.OutOrStdout(), yes))
	},
}.Build()

func runRetry(cmd *cobra.Command, homeDir, problemsFlag, configPath string, verbose bool, pk PromptKit) error {
	st, err := config.ReadState(homeDir)
	if err != nil {
		return fmt.Errorf("read run state: %w", err)
	}
	if st == nil {
		return fmt.Errorf("no previous run recorded, use 'clockfill run' first")
	}

	cfg, err := loadConfig(homeDir, configPath)
	if err != nil {
		return err
	}

	path := problemsFlag
	if path == "" {
		path = st.ProblemFile
	}
	if path == "" {
		path = cfg.ProblemFile
	}

	problems, err := sheet.ReadProblems(path)
	if err != nil {
		return err
	}

	var corrected []attendance.Problem
	for _, p := range problems {
		if p.HasCorrection() {
			corrected = append(corrected, p)
		}
	}

	out := cmd.OutOrStdout()
	if len(corrected) == 0 {
		_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("No corrections filled in %s.", Primary(path))))
		return nil
	}

	workbooks := stateWorkbooks(st, cfg)
	if len(workbooks) == 0 {
		return fmt.Errorf("the last run recorded no workbooks for the configured sites")
	}

	if pk.Confirm != nil {
		ok, err := pk.Confirm(fmt.Sprintf("Apply %d corrections to %d workbooks?", len(corrected), len(workbooks)))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, Silent("Aborted."))
			return nil
		}
	}

	logger, handler := newLogger(cmd.ErrOrStderr(), verbose)

	var applied int
	var failed []error
	// misses counts, per sheet and name, the workbooks that lacked the name.
	misses := make(map[string]map[string]int)
	searched := make(map[string]int)
	sheets, groups := groupBySheet(corrected, st, cfg)

	for _, wb := range workbooks {
		w := sheet.NewWriter(wb.path, wb.site, sheet.Options{SheetNameFormat: cfg.SheetNameFormat, Logger: logger})
		for _, name := range sheets {
			rep, err := w.ApplyCorrections(name, groups[name])
			if err != nil {
				logger.Error("corrections not applied", "site", wb.site.Name, "sheet", name, "err", err)
				failed = append(failed, fmt.Errorf("%s %s: %w", wb.site.Name, name, err))
				continue
			}
			applied += rep.Applied
			searched[name]++
			if misses[name] == nil {
				misses[name] = make(map[string]int)
			}
			seen := make(map[string]bool, len(rep.Unknown))
			for _, u := range rep.Unknown {
				if !seen[u] {
					seen[u] = true
					misses[name][u]++
				}
			}
		}
	}

	var unknown []string
	for _, name := range sheets {
		for person, n := range misses[name] {
			if n == searched[name] {
				unknown = append(unknown, person)
			}
		}
	}
	sort.Strings(unknown)

	_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("Applied %s corrected values from %s.",
		Primary(fmt.Sprintf("%d", applied)), Primary(path))))
	if len(unknown) > 0 {
		_, _ = fmt.Fprintf(out, "%s\n", Warning("Not found in any workbook: "+strings.Join(unknown, ", ")))
	}

	runlog.Success(logger, "retry finished", "run", st.RunID,
		"warnings", handler.Counts().Warnings(), "errors", handler.Counts().Errors())
	return errors.Join(failed...)
}

// stateWorkbooks returns the workbooks of the last run whose site is still
// configured, in configuration order.
func stateWorkbooks(st *config.RunState, cfg *config.Config) []siteWorkbook {
	var out []siteWorkbook
	for _, s := range cfg.Sites {
		if p, ok := st.Workbooks[s.Name]; ok {
			out = append(out, siteWorkbook{site: s, path: p})
		}
	}
	return out
}

// groupBySheet groups problems by the sheet holding their date, keeping the
// order in which sheets first appear. Undated problems go to the last run's
// sheet.
func groupBySheet(problems []attendance.Problem, st *config.RunState, cfg *config.Config) ([]string, map[string][]attendance.Problem) {
	format := cfg.SheetNameFormat
	if format == "" {
		format = "01.02"
	}

	var order []string
	groups := make(map[string][]attendance.Problem)
	for _, p := range problems {
		name := st.Sheet
		if !p.Date.IsZero() {
			name = p.Date.Format(format)
		}
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], p)
	}
	return order, groups
}
