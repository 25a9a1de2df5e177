package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkprune.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkprune",
		Short: "Filter dead links out of a bookmarks backup",
		Long: `linkprune checks every URL in a Firefox bookmarks backup for liveness
and writes a filtered copy that keeps only the bookmarks that still
resolve. Folder structure and bookmark order are preserved exactly;
only individual bookmarks are ever removed.

Bookmarks with non-web schemes (javascript:, place:, about:, ...) are
kept without checking. file:// bookmarks are checked against the local
filesystem. Hosts with broken TLS are kept: a bad certificate does not
prove the page is gone.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewPruneCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
