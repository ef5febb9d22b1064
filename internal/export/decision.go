package export

import (
	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/project"
)

// Mode selects which file forms the export includes.
type Mode string

const (
	// ModeAll exports every source file, plus compiled artifacts where
	// they exist.
	ModeAll Mode = "all"

	// ModePrecompiledOnly exports compiled artifacts where available,
	// falling back to the source form so no file is ever dropped.
	ModePrecompiledOnly Mode = "precompiled"
)

// Action is the copy form chosen for a source file.
type Action string

const (
	// ActionCopySource copies the file as-is.
	ActionCopySource Action = "copy_source"

	// ActionCopyArtifact copies the compiled artifact in place of the
	// source.
	ActionCopyArtifact Action = "copy_artifact"

	// ActionSkip copies nothing for this file.
	ActionSkip Action = "skip"
)

// Decision is one file's export plan.
type Decision struct {
	// Action is the primary copy form for the file.
	Action Action

	// ArtifactAlso requests an additional artifact copy beside the source
	// form (ModeAll with an artifact available).
	ArtifactAlso bool
}

// Decide assigns an export decision to every source file.
//
// Mode ALL: every file is copied as source (OTHER-kind and Python alike,
// regardless of artifact state), and files with an available artifact get
// an additional artifact copy.
//
// Mode PRECOMPILED_ONLY: files with an available artifact are copied as
// artifact; files without one (compilation failed, or not a Python file)
// fall back to a source copy. The fallback guarantees every enumerated
// file has exactly one resulting export action, never zero.
//
// An artifact counts as available when it existed before the compile pass
// (state current or stale) or was just produced (outcome succeeded).
// Decide is pure: it performs no I/O and mutates none of its inputs.
func Decide(files []project.SourceFile, states map[string]build.ArtifactState, outcomes map[string]build.Outcome, mode Mode) map[string]Decision {
	decisions := make(map[string]Decision, len(files))
	for _, f := range files {
		available := f.Kind == project.KindPythonSource && artifactAvailable(states[f.RelPath], outcomes[f.RelPath])

		if mode == ModePrecompiledOnly && available {
			decisions[f.RelPath] = Decision{Action: ActionCopyArtifact}
			continue
		}

		decisions[f.RelPath] = Decision{
			Action:       ActionCopySource,
			ArtifactAlso: mode == ModeAll && available,
		}
	}
	return decisions
}

func artifactAvailable(state build.ArtifactState, outcome build.Outcome) bool {
	if outcome.Status == build.OutcomeSucceeded {
		return true
	}
	return state == build.StateCurrent || state == build.StateStale
}
