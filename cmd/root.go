package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the incoin command tree. Running it without a
// subcommand starts the bot.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "incoin",
		Short:        "いんコイン economy bot for Discord",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}

	root.AddCommand(
		newRunCmd(),
		newMigrateCmd(),
		newResyncCmd(),
	)
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context())
		},
	}
}
