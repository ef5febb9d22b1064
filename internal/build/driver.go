package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/picoforge/picoforge/internal/project"
)

// DefaultTimeout bounds one compiler subprocess. Compiler hangs are treated
// as that file's failure, not the batch's.
const DefaultTimeout = 30 * time.Second

// Driver invokes the external cross compiler, one isolated subprocess per
// stale or missing artifact.
//
// The compiler is an opaque capability behind a narrow contract: invoked
// with (input path, output path), exit code 0 with the output file written
// means success, non-zero exit means failure with stderr as the reason. Any
// conforming compiler may be substituted.
type Driver struct {
	// Command is the compiler executable. Defaults to "mpy-cross".
	Command string

	// Args are extra arguments passed before the input path, such as a
	// target architecture flag.
	Args []string

	// Timeout bounds each subprocess. Zero means DefaultTimeout.
	Timeout time.Duration

	// Jobs bounds concurrent subprocess invocations. Zero or negative
	// means one worker per available CPU.
	Jobs int
}

// NewDriver returns a Driver with the default mpy-cross command.
func NewDriver() *Driver {
	return &Driver{Command: "mpy-cross", Timeout: DefaultTimeout}
}

// Compile compiles every Python source file whose state is missing or
// stale, dispatching subprocesses across a bounded worker pool. Each file
// operates on a disjoint input/output pair, so workers share no mutable
// state and no locking is needed beyond the result slots.
//
// Outcomes are captured independently per file: a non-zero exit or launch
// failure yields a failed outcome for that file only and never aborts the
// batch. Files already current are reported skipped without a subprocess.
// Failed compiles are not retried; compiler errors are source-code errors,
// not transient conditions.
//
// If ctx is cancelled, in-flight subprocesses are terminated and their
// files (plus any not yet started) are recorded as failed with reason
// "interrupted". Outcomes already completed are preserved, so a partial
// run still yields a usable report.
func (d *Driver) Compile(ctx context.Context, files []project.SourceFile, states map[string]ArtifactState) map[string]Outcome {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	jobs := d.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// One result slot per file; workers write disjoint indices.
	results := make([]Outcome, len(files))
	tracked := make([]bool, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, f := range files {
		i, f := i, f
		if f.Kind != project.KindPythonSource {
			continue
		}
		tracked[i] = true

		if states[f.RelPath] == StateCurrent {
			results[i] = Outcome{Status: OutcomeSkipped}
			continue
		}

		g.Go(func() error {
			results[i] = d.compileOne(ctx, f, timeout)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are values

	outcomes := make(map[string]Outcome, len(files))
	for i, f := range files {
		if tracked[i] {
			outcomes[f.RelPath] = results[i]
		}
	}
	return outcomes
}

// compileOne runs a single compiler subprocess for f.
func (d *Driver) compileOne(ctx context.Context, f project.SourceFile, timeout time.Duration) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Status: OutcomeFailed, Reason: "interrupted"}
	}

	artifact := ArtifactPath(f.AbsPath)
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return Outcome{Status: OutcomeFailed, Reason: fmt.Sprintf("creating artifact directory: %v", err)}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, d.Args...), f.AbsPath, "-o", artifact)
	cmd := exec.CommandContext(runCtx, d.Command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case ctx.Err() != nil:
		return Outcome{Status: OutcomeFailed, Reason: "interrupted"}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return Outcome{Status: OutcomeFailed, Reason: fmt.Sprintf("compiler timed out after %s", timeout)}
	case err != nil:
		return Outcome{Status: OutcomeFailed, Reason: failureReason(err, stderr.String())}
	}

	// Exit 0 alone is not success: the contract requires the output file.
	if _, statErr := os.Stat(artifact); statErr != nil {
		return Outcome{Status: OutcomeFailed, Reason: "compiler exited 0 but wrote no artifact"}
	}
	return Outcome{Status: OutcomeSucceeded}
}

// failureReason formats a subprocess failure, surfacing captured stderr
// verbatim so the user sees the compiler's own diagnostics.
func failureReason(err error, stderr string) string {
	stderr = strings.TrimSpace(stderr)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr != "" {
			return fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), stderr)
		}
		return fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}

	// Launch failure (compiler not installed, not executable, etc).
	return fmt.Sprintf("launching compiler: %v", err)
}
