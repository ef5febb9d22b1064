package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/export"
	"github.com/picoforge/picoforge/internal/report"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Precompiled bool   // export compiled artifacts instead of sources
	Dest        string // destination directory override
	Compiler    string
	March       string
	IncludeLib  bool
	NoJournal   bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Synchronize project files into the export tree",
		Long: `Export the project for distribution.

Stale sources are compiled first, then every source file is reconciled into
the export tree. By default both sources and their compiled artifacts are
exported; with --precompiled only artifacts are exported, falling back to
the source form for files that have no artifact, so every file is
represented in the export by some form.

Export is idempotent: re-running with unchanged inputs reproduces the same
destination tree byte for byte.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Precompiled, "precompiled", false, "only export precompiled code")
	cmd.Flags().StringVarP(&opts.Dest, "dest", "d", "", "destination directory (default <root>/export)")
	cmd.Flags().StringVar(&opts.Compiler, "compiler", "", "compiler executable (default mpy-cross)")
	cmd.Flags().StringVar(&opts.March, "march", "armv6m", "target architecture flag for the compiler")
	cmd.Flags().BoolVar(&opts.IncludeLib, "include-lib", false, "also export files under lib/")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record this run in the history journal")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	root, files, err := loadProject(opts.RootOptions, opts.IncludeLib)
	if err != nil {
		return commandError(formatter, err)
	}

	mode := export.ModeAll
	if opts.Precompiled {
		mode = export.ModePrecompiledOnly
	}

	dest := opts.Dest
	if dest == "" {
		dest = root.ExportDir()
	}

	// Compile stale sources first so the reconciler sees fresh artifacts.
	states := build.TrackStates(files)
	driver := newDriver(opts.RootOptions, opts.Compiler, opts.March)
	outcomes := driver.Compile(cmd.Context(), files, states)

	slog.Debug("reconciling export", "dest", dest, "mode", mode)
	reconciler := &export.Reconciler{DestDir: dest, Jobs: opts.Jobs}
	result, err := reconciler.Reconcile(cmd.Context(), root, files, states, outcomes, mode)
	if err != nil {
		return commandError(formatter, WrapExitError(ExitCommandError, "computing tree diff", err))
	}

	rep := report.Build(files, states, outcomes, result)

	if !opts.NoJournal {
		recordRun(cmd.Context(), root, "export", string(mode), rep)
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(rep); err != nil {
			return err
		}
	} else {
		renderReport(formatter.Writer, rep, true)
	}

	if rep.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed during export", rep.Summary.Failed+rep.Summary.CopyErrs))
	}
	return nil
}
