package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/Flyrell/clockfill/internal/attendance"
	"github.com/Flyrell/clockfill/internal/config"
	"github.com/Flyrell/clockfill/internal/sheet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	fixedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00C853"))
)

var reviewCmd = LeafCommand{
	Use:   "review",
	Short: "Browse the rows that need review",
	StrFlags: []StringFlag{
		{Name: "problems", Usage: "problem file (default: the one written by the last run)"},
		configFlag,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		problemsFlag, _ := cmd.Flags().GetString("problems")
		configPath, _ := cmd.Flags().GetString("config")

		return runReview(cmd, homeDir, problemsFlag, configPath)
	},
}.Build()

func runReview(cmd *cobra.Command, homeDir, problemsFlag, configPath string) error {
	path := problemsFlag
	if path == "" {
		st, err := config.ReadState(homeDir)
		if err != nil {
			return fmt.Errorf("read run state: %w", err)
		}
		if st != nil {
			path = st.ProblemFile
		}
	}
	if path == "" {
		cfg, err := loadConfig(homeDir, configPath)
		if err != nil {
			return err
		}
		path = cfg.ProblemFile
	}

	problems, err := sheet.ReadProblems(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(problems) == 0 {
		_, _ = fmt.Fprintf(out, "%s\n", Text(fmt.Sprintf("No rows to review in %s.", Primary(path))))
		return nil
	}

	if !isTerminal(out) {
		return printStaticProblemTable(out, problems)
	}

	m := newReviewModel(problems, path)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(out))
	_, err = p.Run()
	return err
}

func printStaticProblemTable(w io.Writer, problems []attendance.Problem) error {
	_, err := fmt.Fprint(w, renderProblemTable(problems, 0, len(problems), -1))
	return err
}
