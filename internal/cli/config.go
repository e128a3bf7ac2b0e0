package cli

import "github.com/spf13/cobra"

var configCmd = GroupCommand{
	Use:   "config",
	Short: "Manage the clockfill configuration",
	Subcommands: []*cobra.Command{
		configInitCmd,
		configPathCmd,
		configShowCmd,
	},
}.Build()
