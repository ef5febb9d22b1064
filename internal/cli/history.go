package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int    // max runs shown
	Database string // journal path override
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past compile and export runs",
		Long: `Show the run history recorded in the project journal.

The journal is informational only: it records what past runs did, and is
never consulted when deciding what to compile or export.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "max runs to show (0 = all)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database path (default <root>/.picoforge/history.db)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	path := opts.Database
	if path == "" {
		root, _, err := loadProject(opts.RootOptions, false)
		if err != nil {
			return commandError(formatter, err)
		}
		path = journalPath(root)
	}

	if _, err := os.Stat(path); err != nil {
		// No journal yet is an empty history, not an error.
		if formatter.Format == "json" {
			return formatter.JSON([]journal.RunRecord{})
		}
		fmt.Fprintln(formatter.Writer, "no recorded runs")
		return nil
	}

	j, err := journal.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening journal", err)
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading journal", err)
	}

	if formatter.Format == "json" {
		if runs == nil {
			runs = []journal.RunRecord{}
		}
		return formatter.JSON(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no recorded runs")
		return nil
	}

	for _, r := range runs {
		cmdName := r.Command
		if r.Mode != "" {
			cmdName += " (" + r.Mode + ")"
		}
		fmt.Fprintf(formatter.Writer, "  %s  %-20s %d succeeded, %d failed, %d skipped, %d copied\n",
			r.StartedAt.Local().Format(time.DateTime), cmdName, r.Succeeded, r.Failed, r.Skipped, r.Copied)
		for _, p := range r.FailedPaths {
			formatter.VerboseLog("      failed: %s", p)
		}
	}
	return nil
}
