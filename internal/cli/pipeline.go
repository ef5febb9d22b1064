package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/journal"
	"github.com/picoforge/picoforge/internal/project"
	"github.com/picoforge/picoforge/internal/report"
)

// configureLogging sets up slog on stderr, level from the verbose flag.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// loadProject resolves the project root and enumerates its source files.
// Root resolution failure is fatal: without a root there is no safe scope
// to operate in, so it maps to a command error before any file work.
func loadProject(opts *RootOptions, includeLib bool) (*project.Root, []project.SourceFile, error) {
	root, err := project.Resolve(opts.Project)
	if err != nil {
		var notFound *project.RootNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil, WrapExitError(ExitCommandError, "project root not found", err)
		}
		return nil, nil, WrapExitError(ExitCommandError, "resolving project root", err)
	}
	slog.Debug("project resolved", "root", root.Path, "layout", root.Layout, "marker", root.Marker)

	files, err := project.Scan(root, project.ScanOptions{IncludeLib: includeLib})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "scanning source files", err)
	}
	slog.Debug("sources enumerated", "count", len(files))

	return root, files, nil
}

// newDriver builds a compiler driver from command flags.
func newDriver(opts *RootOptions, compiler string, march string) *build.Driver {
	d := build.NewDriver()
	if compiler != "" {
		d.Command = compiler
	}
	if march != "" {
		d.Args = append(d.Args, "-march="+march)
	}
	d.Jobs = opts.Jobs
	return d
}

// journalPath is where the run journal lives, under the project root.
func journalPath(root *project.Root) string {
	return filepath.Join(root.Path, ".picoforge", "history.db")
}

// recordRun appends a run record to the journal. Best effort: journal
// failures are logged, never surfaced as run failures, since the report and
// exit code already carry the run's outcome.
func recordRun(ctx context.Context, root *project.Root, command, mode string, rep *report.Report) {
	path := journalPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("journal unavailable", "error", err)
		return
	}

	j, err := journal.Open(path)
	if err != nil {
		slog.Warn("journal unavailable", "error", err)
		return
	}
	defer j.Close()

	rec := journal.RunRecord{
		ID:        journal.NewRunID(),
		Command:   command,
		Mode:      mode,
		Root:      root.Path,
		Succeeded: rep.Summary.Succeeded,
		Failed:    rep.Summary.Failed,
		Skipped:   rep.Summary.Skipped,
		Copied:    rep.Summary.Copied,
	}
	for _, r := range rep.Records {
		if r.Outcome == build.OutcomeFailed || r.CopyError != "" {
			rec.FailedPaths = append(rec.FailedPaths, r.Path)
		}
	}

	if err := j.WriteRun(ctx, rec); err != nil {
		slog.Warn("journal write failed", "error", err)
	}
}
