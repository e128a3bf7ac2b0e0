package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/Flyrell/clockfill/internal/config"
	"github.com/spf13/cobra"
)

var configInitCmd = LeafCommand{
	Use:   "init",
	Short: "Write the default configuration file",
	StrFlags: []StringFlag{
		configFlag,
	},
	BoolFlags: []BoolFlag{yesFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		configPath, _ := cmd.Flags().GetString("config")
		yes, _ := cmd.Flags().GetBool("yes")

		return runConfigInit(cmd, homeDir, configPath, promptKitFor(cmd.OutOrStdout(), yes))
	},
}.Build()

func runConfigInit(cmd *cobra.Command, homeDir, configPath string, pk PromptKit) error {
	path := configPath
	if path == "" {
		path = config.Path(homeDir)
	}

	if _, err := os.Stat(path); err == nil {
		if pk.Confirm == nil {
			return fmt.Errorf("%s already exists (use --yes to overwrite)", path)
		}
		ok, err := pk.Confirm(fmt.Sprintf("Overwrite %s with the defaults?", path))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Silent("Aborted."))
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Write(path, config.Default()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", Text(fmt.Sprintf("Default configuration written to %s", Primary(path))))
	return nil
}
