package cli

import (
	"fmt"
	"io"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/export"
	"github.com/picoforge/picoforge/internal/report"
)

// renderReport writes the human-readable form of a report.
//
// Records are already ordered lexicographically by path, so the rendering
// is deterministic regardless of worker completion order. The layout
// distinguishes "succeeded", "skipped (already current)" and "failed with
// reason" per file, so a user can tell why a file was not compiled or
// exported without re-running with verbose flags.
func renderReport(w io.Writer, rep *report.Report, withExport bool) {
	for _, rec := range rep.Records {
		line := "  " + rec.Path

		if rec.Outcome != "" {
			line += "  " + string(rec.Outcome)
			if rec.Outcome == build.OutcomeSkipped {
				line += " (already current)"
			}
		}

		if withExport && rec.Decision != "" {
			switch rec.Decision {
			case export.ActionCopySource:
				line += "  exported source"
			case export.ActionCopyArtifact:
				line += "  exported artifact"
			case export.ActionSkip:
				line += "  not exported"
			}
			if rec.ArtifactAlso {
				line += " (+artifact)"
			}
		}

		fmt.Fprintln(w, line)

		if rec.Reason != "" {
			fmt.Fprintf(w, "      reason: %s\n", rec.Reason)
		}
		if rec.CopyError != "" {
			fmt.Fprintf(w, "      copy error: %s\n", rec.CopyError)
		}
	}

	if withExport {
		renderDiff(w, rep.Diff)
	}

	s := rep.Summary
	mark := "✓"
	if rep.Failed() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %d file(s): %d succeeded, %d failed, %d skipped", mark, s.Files, s.Succeeded, s.Failed, s.Skipped)
	if withExport {
		fmt.Fprintf(w, ", %d copied", s.Copied)
	}
	fmt.Fprintln(w)
}

// renderDiff writes the source/export tree comparison.
func renderDiff(w io.Writer, d export.Diff) {
	if len(d.OnlySource) > 0 {
		fmt.Fprintln(w, "Only in source:")
		for _, p := range d.OnlySource {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	if len(d.OnlyExport) > 0 {
		fmt.Fprintln(w, "Only in export:")
		for _, p := range d.OnlyExport {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}
