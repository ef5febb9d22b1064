package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoforge/picoforge/internal/build"
	"github.com/picoforge/picoforge/internal/project"
)

// fixture is a small on-disk project with one compiled and one failed file.
type fixture struct {
	root  *project.Root
	dest  string
	files []project.SourceFile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	srcDir := filepath.Join(base, "proj")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	write := func(rel, content string) project.SourceFile {
		abs := filepath.Join(srcDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
		info, err := os.Stat(abs)
		require.NoError(t, err)

		kind := project.KindOther
		if filepath.Ext(rel) == ".py" {
			kind = project.KindPythonSource
		}
		return project.SourceFile{RelPath: rel, AbsPath: abs, ModTime: info.ModTime(), Kind: kind}
	}

	f := &fixture{
		root: &project.Root{Path: base, Layout: project.LayoutFlat, SourceDir: srcDir},
		dest: filepath.Join(base, "export"),
	}
	f.files = []project.SourceFile{
		write("a.py", "a = 1"),
		write("b.py", "syntax error"),
		write("cfg.json", "{}"),
	}
	// a.py compiled successfully; b.py failed.
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.mpy"), []byte{0x4d, 0x06}, 0o644))
	return f
}

func (f *fixture) states() map[string]build.ArtifactState {
	return map[string]build.ArtifactState{"a.py": build.StateMissing, "b.py": build.StateMissing}
}

func (f *fixture) outcomes() map[string]build.Outcome {
	return map[string]build.Outcome{
		"a.py": {Status: build.OutcomeSucceeded},
		"b.py": {Status: build.OutcomeFailed, Reason: "SyntaxError"},
	}
}

func TestReconcileModeAll(t *testing.T) {
	f := newFixture(t)
	r := &Reconciler{DestDir: f.dest}

	result, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModeAll)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	// Destination: a.py, a.mpy, b.py, cfg.json; b.mpy absent (compile failed).
	assert.FileExists(t, filepath.Join(f.dest, "a.py"))
	assert.FileExists(t, filepath.Join(f.dest, "a.mpy"))
	assert.FileExists(t, filepath.Join(f.dest, "b.py"))
	assert.FileExists(t, filepath.Join(f.dest, "cfg.json"))
	assert.NoFileExists(t, filepath.Join(f.dest, "b.mpy"))
}

func TestReconcilePrecompiledOnly(t *testing.T) {
	f := newFixture(t)
	r := &Reconciler{DestDir: f.dest}

	result, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModePrecompiledOnly)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	// a exported as artifact only; b falls back to source; cfg copied as-is.
	assert.FileExists(t, filepath.Join(f.dest, "a.mpy"))
	assert.NoFileExists(t, filepath.Join(f.dest, "a.py"))
	assert.FileExists(t, filepath.Join(f.dest, "b.py"))
	assert.FileExists(t, filepath.Join(f.dest, "cfg.json"))
}

func TestReconcileIdempotent(t *testing.T) {
	f := newFixture(t)
	r := &Reconciler{DestDir: f.dest}

	_, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModeAll)
	require.NoError(t, err)
	first := readTree(t, f.dest)

	_, err = r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModeAll)
	require.NoError(t, err)
	second := readTree(t, f.dest)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("destination tree changed between identical runs (-first +second):\n%s", diff)
	}
}

func TestReconcileOverwritesStaleDestination(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.dest, "a.py"), []byte("old content"), 0o644))

	r := &Reconciler{DestDir: f.dest}
	_, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModeAll)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.dest, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "a = 1", string(data))
}

func TestReconcileCopyFailureIsolated(t *testing.T) {
	f := newFixture(t)
	// A directory squatting on b.py's destination makes that copy fail.
	require.NoError(t, os.MkdirAll(filepath.Join(f.dest, "b.py"), 0o755))

	r := &Reconciler{DestDir: f.dest}
	result, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModeAll)
	require.NoError(t, err)

	require.Contains(t, result.Errors, "b.py")
	// Remaining copies still completed.
	assert.FileExists(t, filepath.Join(f.dest, "a.py"))
	assert.FileExists(t, filepath.Join(f.dest, "cfg.json"))
}

func TestReconcileDiff(t *testing.T) {
	f := newFixture(t)
	r := &Reconciler{DestDir: f.dest}

	result, err := r.Reconcile(context.Background(), f.root, f.files, f.states(), f.outcomes(), ModePrecompiledOnly)
	require.NoError(t, err)

	// a.py exists only in source (artifact was exported in its place);
	// nothing exists only in the export beyond what was copied from source.
	assert.Contains(t, result.Diff.OnlySource, "a.py")
	assert.Contains(t, result.Diff.Common, "cfg.json")
	assert.Contains(t, result.Diff.Common, "b.py")
}

func TestReconcileEveryFileRepresented(t *testing.T) {
	// Partial-failure isolation: one invalid file among nine valid ones
	// still leaves all ten represented in the export.
	base := t.TempDir()
	srcDir := filepath.Join(base, "proj")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	var files []project.SourceFile
	states := make(map[string]build.ArtifactState)
	outcomes := make(map[string]build.Outcome)
	for _, name := range []string{"a.py", "b.py", "c.py", "d.py", "e.py", "f.py", "g.py", "h.py", "i.py"} {
		abs := filepath.Join(srcDir, name)
		require.NoError(t, os.WriteFile(abs, []byte("ok"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, build.ArtifactPath(name)), []byte{0x4d}, 0o644))
		files = append(files, project.SourceFile{RelPath: name, AbsPath: abs, Kind: project.KindPythonSource})
		states[name] = build.StateMissing
		outcomes[name] = build.Outcome{Status: build.OutcomeSucceeded}
	}
	abs := filepath.Join(srcDir, "bad.py")
	require.NoError(t, os.WriteFile(abs, []byte("nope"), 0o644))
	files = append(files, project.SourceFile{RelPath: "bad.py", AbsPath: abs, Kind: project.KindPythonSource})
	states["bad.py"] = build.StateMissing
	outcomes["bad.py"] = build.Outcome{Status: build.OutcomeFailed, Reason: "SyntaxError"}

	root := &project.Root{Path: base, SourceDir: srcDir, Layout: project.LayoutFlat}
	dest := filepath.Join(base, "export")
	r := &Reconciler{DestDir: dest}

	result, err := r.Reconcile(context.Background(), root, files, states, outcomes, ModePrecompiledOnly)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	for _, f := range files {
		rel := f.RelPath
		if result.Decisions[rel].Action == ActionCopyArtifact {
			rel = build.ArtifactPath(rel)
		}
		assert.FileExists(t, filepath.Join(dest, rel), f.RelPath)
	}
}

// readTree returns rel path -> content for every file under dir.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, e.IsDir(), "unexpected subdirectory %s", e.Name())
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		tree[e.Name()] = string(data)
	}
	return tree
}
