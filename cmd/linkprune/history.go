package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkprune/linkprune/internal/config"
	"github.com/linkprune/linkprune/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded filtering runs",
		Long: `History lists past filtering runs recorded in the local database,
newest first. With --run, it lists the bookmarks dropped by one run.

The database only records what each run did; it is never consulted
while probing, so deleting it loses nothing but this listing.

Examples:
  # Show the last 20 runs
  linkprune history

  # Show everything ever recorded
  linkprune history --limit 0

  # Show what run 3 dropped
  linkprune history --run 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().Int64("run", 0,
		"Show the bookmarks dropped by the given run ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no run history recorded yet: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-only session.

	out := cmd.OutOrStdout()

	if runID > 0 {
		dropped, err := db.DroppedForRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(dropped) == 0 {
			fmt.Fprintf(out, "run %d dropped no bookmarks\n", runID)
			return nil
		}
		for _, d := range dropped {
			fmt.Fprintf(out, "%s\t%s\t%s\n", d.URL, d.Title, d.Reason)
		}
		return nil
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-20s  %-8s  %-8s  %-8s  %s\n",
		"ID", "STARTED", "PLACES", "KEPT", "DROPPED", "INPUT")
	for _, r := range runs {
		fmt.Fprintf(out, "%-4d  %-20s  %-8d  %-8d  %-8d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Places, r.Kept, r.Dropped, r.Input,
		)
	}
	return nil
}
