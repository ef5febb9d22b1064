package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/project"
)

// Reconciler executes export decisions against a destination tree.
type Reconciler struct {
	// DestDir is the absolute export destination directory.
	DestDir string

	// Jobs bounds concurrent copy workers. Zero or negative means one
	// worker per available CPU.
	Jobs int
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Decisions is the per-file export plan that was executed.
	Decisions map[string]Decision

	// Copied lists destination-relative paths written, sorted.
	Copied []string

	// Errors records per-file copy failures keyed by destination-relative
	// path. A failed copy never aborts the remaining copies.
	Errors map[string]*CopyError

	// Diff compares source and destination trees after copying. Reporting
	// only; it feeds no decision.
	Diff Diff
}

// copyOp is one planned file write.
type copyOp struct {
	src     string // absolute source path
	destRel string // path relative to DestDir
}

// Reconcile decides and executes the export in one pass, then computes the
// tree diff.
//
// Copies are dispatched across a bounded worker pool. Every destination
// path is written by exactly one worker; paths are disjoint by
// construction, so no locking is needed. The one exception is
// case-insensitive or normalization-insensitive filesystems, where two
// distinct relative paths can collide on disk; ops sharing a collision
// key are therefore grouped and serialized through a single worker.
func (r *Reconciler) Reconcile(ctx context.Context, root *project.Root, files []project.SourceFile, states map[string]build.ArtifactState, outcomes map[string]build.Outcome, mode Mode) (*Result, error) {
	decisions := Decide(files, states, outcomes, mode)

	ops := planOps(files, decisions)

	result := &Result{
		Decisions: decisions,
		Errors:    make(map[string]*CopyError),
	}

	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	// Group ops by collision key; each group runs in order on one worker.
	for _, group := range groupByCollisionKey(ops) {
		group := group
		g.Go(func() error {
			for _, op := range group {
				if err := ctx.Err(); err != nil {
					return nil
				}
				err := copyFile(op.src, filepath.Join(r.DestDir, op.destRel))

				mu.Lock()
				if err != nil {
					result.Errors[op.destRel] = &CopyError{Path: op.destRel, Err: err}
				} else {
					result.Copied = append(result.Copied, op.destRel)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // copy failures are values, never group errors

	sort.Strings(result.Copied)

	diff, err := diffTrees(root.SourceDir, r.DestDir)
	if err != nil {
		return result, err
	}
	result.Diff = diff
	return result, nil
}

// planOps expands decisions into concrete copy operations.
func planOps(files []project.SourceFile, decisions map[string]Decision) []copyOp {
	var ops []copyOp
	for _, f := range files {
		d, ok := decisions[f.RelPath]
		if !ok || d.Action == ActionSkip {
			continue
		}

		switch d.Action {
		case ActionCopySource:
			ops = append(ops, copyOp{src: f.AbsPath, destRel: f.RelPath})
		case ActionCopyArtifact:
			ops = append(ops, copyOp{
				src:     build.ArtifactPath(f.AbsPath),
				destRel: build.ArtifactPath(f.RelPath),
			})
		}

		if d.ArtifactAlso {
			ops = append(ops, copyOp{
				src:     build.ArtifactPath(f.AbsPath),
				destRel: build.ArtifactPath(f.RelPath),
			})
		}
	}
	return ops
}

// copyFile copies src to dest, creating parent directories and overwriting
// any existing destination file unconditionally.
func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// groupByCollisionKey partitions ops so that any two ops whose destination
// paths could alias on a case- or normalization-insensitive filesystem end
// up in the same group, in stable plan order.
func groupByCollisionKey(ops []copyOp) [][]copyOp {
	byKey := make(map[string][]copyOp)
	var keys []string
	for _, op := range ops {
		key := collisionKey(op.destRel)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], op)
	}

	sort.Strings(keys)
	groups := make([][]copyOp, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, byKey[key])
	}
	return groups
}
