package root

import (
	"github.com/flarebyte/mainspring/cmd/mainspring/check"
	"github.com/flarebyte/mainspring/cmd/mainspring/run"
	"github.com/flarebyte/mainspring/cmd/mainspring/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mainspring.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mainspring",
		Short: "CLI: run Lua scripts as command-line programs with flags, defaults and exit codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(check.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
