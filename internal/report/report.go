// Package report aggregates per-file outcomes into a single structured
// result for presentation.
//
// Building a report is pure: it merges the tracker's states, the driver's
// outcomes and the reconciler's decisions without I/O and without mutating
// any upstream value. Records are ordered lexicographically by relative
// path regardless of the completion order of concurrent work, so two runs
// over the same inputs render identically. The core never prints; rendering
// belongs to the presentation layer.
package report

import (
	"sort"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/export"
	"github.com/picoforge/picoforge/internal/project"
)

// Record is one file's merged status.
type Record struct {
	// Path is the source-relative path.
	Path string `json:"path"`

	// Kind is the file's enumeration kind.
	Kind project.Kind `json:"kind"`

	// State is the artifact state observed before compiling. Empty for
	// untracked (non-Python) files.
	State build.ArtifactState `json:"state,omitempty"`

	// Outcome is the compile result. Empty when no compile pass ran or
	// the file is untracked.
	Outcome build.OutcomeStatus `json:"outcome,omitempty"`

	// Reason is the compile failure reason, verbatim, when Outcome is
	// failed.
	Reason string `json:"reason,omitempty"`

	// Decision is the export action. Empty when no export pass ran.
	Decision export.Action `json:"decision,omitempty"`

	// ArtifactAlso is set when the export additionally copied the
	// compiled artifact beside the source form.
	ArtifactAlso bool `json:"artifact_also,omitempty"`

	// CopyError is the copy failure for this file's destination, if any.
	CopyError string `json:"copy_error,omitempty"`
}

// Summary counts record outcomes for exit-code policy and display.
type Summary struct {
	Files     int `json:"files"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Copied    int `json:"copied"`
	CopyErrs  int `json:"copy_errors"`
}

// Report is the final structured result of a run.
type Report struct {
	Records []Record    `json:"records"`
	Diff    export.Diff `json:"diff"`
	Summary Summary     `json:"summary"`
}

// Failed reports whether any per-file outcome failed. At least one failed
// outcome makes the whole run a failure for exit-code purposes, even though
// the remaining files completed.
func (r *Report) Failed() bool {
	return r.Summary.Failed > 0 || r.Summary.CopyErrs > 0
}

// Build merges per-file results into an ordered report. The export result
// may be nil (compile-only runs); outcomes may be nil (export of an
// already-compiled tree never invoked the driver).
func Build(files []project.SourceFile, states map[string]build.ArtifactState, outcomes map[string]build.Outcome, exp *export.Result) *Report {
	rep := &Report{Records: make([]Record, 0, len(files))}

	for _, f := range files {
		rec := Record{
			Path:  f.RelPath,
			Kind:  f.Kind,
			State: states[f.RelPath],
		}

		if out, ok := outcomes[f.RelPath]; ok {
			rec.Outcome = out.Status
			rec.Reason = out.Reason
			switch out.Status {
			case build.OutcomeSucceeded:
				rep.Summary.Succeeded++
			case build.OutcomeFailed:
				rep.Summary.Failed++
			case build.OutcomeSkipped:
				rep.Summary.Skipped++
			}
		}

		if exp != nil {
			if d, ok := exp.Decisions[f.RelPath]; ok {
				rec.Decision = d.Action
				rec.ArtifactAlso = d.ArtifactAlso
			}
			if ce := copyErrorFor(exp, f.RelPath); ce != "" {
				rec.CopyError = ce
				rep.Summary.CopyErrs++
			}
		}

		rep.Records = append(rep.Records, rec)
		rep.Summary.Files++
	}

	sort.Slice(rep.Records, func(i, j int) bool {
		return rep.Records[i].Path < rep.Records[j].Path
	})

	if exp != nil {
		rep.Diff = exp.Diff
		rep.Summary.Copied = len(exp.Copied)
	}
	return rep
}

// copyErrorFor finds a copy failure recorded under either of the file's
// destination forms (source-form path or artifact path).
func copyErrorFor(exp *export.Result, relPath string) string {
	if ce, ok := exp.Errors[relPath]; ok {
		return ce.Err.Error()
	}
	if ce, ok := exp.Errors[build.ArtifactPath(relPath)]; ok {
		return ce.Err.Error()
	}
	return ""
}
