package build

import (
	"os"
	"strings"

	"github.com/picoforge/picoforge/internal/project"
)

// Source and artifact file extensions for the MicroPython toolchain.
const (
	SourceExt   = ".py"
	ArtifactExt = ".mpy"
)

// ArtifactState classifies a source file against its compiled artifact.
type ArtifactState string

const (
	// StateMissing means no artifact file exists for the source.
	StateMissing ArtifactState = "missing"

	// StateStale means an artifact exists but predates its source (or its
	// metadata is unreadable).
	StateStale ArtifactState = "stale"

	// StateCurrent means the artifact is at least as new as its source.
	StateCurrent ArtifactState = "current"
)

// ArtifactPath maps a source path to its artifact path: the same path with
// the source extension replaced by the compiled extension. Compilation
// output lives beside its source, decoupled from export placement.
func ArtifactPath(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, SourceExt) + ArtifactExt
}

// TrackStates classifies every Python source file in files, keyed by
// relative path. Files of other kinds are never tracked.
//
// The rule: MISSING if the artifact does not exist; CURRENT if the
// artifact's mtime is greater than or equal to the source's; STALE
// otherwise, including an artifact whose metadata cannot be read. Only
// stat calls are performed, never content reads.
func TrackStates(files []project.SourceFile) map[string]ArtifactState {
	states := make(map[string]ArtifactState)
	for _, f := range files {
		if f.Kind != project.KindPythonSource {
			continue
		}

		info, err := os.Stat(ArtifactPath(f.AbsPath))
		switch {
		case err != nil && os.IsNotExist(err):
			states[f.RelPath] = StateMissing
		case err != nil:
			states[f.RelPath] = StateStale
		case info.ModTime().Before(f.ModTime):
			states[f.RelPath] = StateStale
		default:
			states[f.RelPath] = StateCurrent
		}
	}
	return states
}
