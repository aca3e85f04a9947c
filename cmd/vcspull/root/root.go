package root

import (
	"github.com/spf13/cobra"
	"github.com/vcs-python/vcspull-sub001/cmd/vcspull/sync"
	"github.com/vcs-python/vcspull-sub001/cmd/vcspull/version"
)

// NewRootCmd creates the root command for vcspull.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcspull",
		Short: "CLI: keep a fleet of git, hg and svn working copies cloned and up to date from declarative configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Subcommands
	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(sync.Cmd)

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
