package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/project"
	"github.com/picoforge/picoforge/internal/report"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Compiler   string // compiler executable override
	March      string // target architecture passed to the compiler
	IncludeLib bool   // compile the local lib/ directory too
	NoJournal  bool   // skip recording the run
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Cross-compile stale Python sources to binary artifacts",
		Long: `Cross-compile the project's Python sources to MicroPython binary files.

Only files whose artifact is missing or older than its source are compiled;
up-to-date files are skipped. A failing file never blocks the rest of the
batch: its compiler output is captured and reported per file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Compiler, "compiler", "", "compiler executable (default mpy-cross)")
	cmd.Flags().StringVar(&opts.March, "march", "armv6m", "target architecture flag for the compiler")
	cmd.Flags().BoolVar(&opts.IncludeLib, "include-lib", false, "also compile files under lib/")
	cmd.Flags().BoolVar(&opts.NoJournal, "no-journal", false, "do not record this run in the history journal")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
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

	states := build.TrackStates(files)
	driver := newDriver(opts.RootOptions, opts.Compiler, opts.March)

	slog.Debug("compiling", "command", driver.Command, "jobs", driver.Jobs)
	outcomes := driver.Compile(cmd.Context(), files, states)

	rep := report.Build(files, states, outcomes, nil)

	if !opts.NoJournal {
		recordRun(cmd.Context(), root, "compile", "", rep)
	}

	if formatter.Format == "json" {
		if err := formatter.JSON(rep); err != nil {
			return err
		}
	} else {
		renderReport(formatter.Writer, rep, false)
	}

	// At least one failed outcome makes the whole run a failure, even
	// though the remaining files completed.
	if rep.Failed() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) failed to compile", rep.Summary.Failed))
	}
	return nil
}

// commandError renders a fatal command error in the configured format and
// passes the exit code through.
func commandError(formatter *OutputFormatter, err error) error {
	var (
		notFound   *project.RootNotFoundError
		missingDir *project.MissingDirectoryError
	)

	code := ErrCodeGeneric
	switch {
	case errors.As(err, &notFound):
		code = ErrCodeRootNotFound
	case errors.As(err, &missingDir):
		code = ErrCodeMissingDir
	}

	_ = formatter.Error(code, err.Error(), nil)
	return err
}
