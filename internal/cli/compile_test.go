package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picoforge/picoforge/internal/build"
)

// fakeCompiler writes a conforming compiler script: copies input to output,
// fails with stderr for inputs whose name contains "bad".
func fakeCompiler(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler script requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "fake-mpy-cross")
	content := `#!/bin/sh
case "$1" in
  *bad*) echo "SyntaxError: invalid syntax" >&2; exit 1 ;;
esac
cp "$1" "$3"
`
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script
}

// newProject creates a flat-layout project with the given source files.
func newProject(t *testing.T, sources map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proj"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "LICENSE"), []byte("MIT"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# proj"), 0o644))

	for rel, content := range sources {
		abs := filepath.Join(root, "proj", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

// runCLI executes the root command with args, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileCommand(t *testing.T) {
	root := newProject(t, map[string]string{"a.py": "a = 1", "b.py": "b = 2"})
	compiler := fakeCompiler(t)

	out, err := runCLI(t, "compile", "-C", root, "--compiler", compiler, "--march=", "--no-journal")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "proj", "a.mpy"))
	assert.FileExists(t, filepath.Join(root, "proj", "b.mpy"))
	assert.Contains(t, out, "2 succeeded")
}

func TestCompileCommandPartialFailure(t *testing.T) {
	root := newProject(t, map[string]string{"a.py": "a = 1", "bad.py": "nope"})
	compiler := fakeCompiler(t)

	out, err := runCLI(t, "compile", "-C", root, "--compiler", compiler, "--march=", "--no-journal")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	// The valid file still compiled; the report names the failure reason.
	assert.FileExists(t, filepath.Join(root, "proj", "a.mpy"))
	assert.NoFileExists(t, filepath.Join(root, "proj", "bad.mpy"))
	assert.Contains(t, out, "SyntaxError")
}

func TestCompileCommandSecondRunSkips(t *testing.T) {
	root := newProject(t, map[string]string{"a.py": "a = 1"})
	compiler := fakeCompiler(t)

	_, err := runCLI(t, "compile", "-C", root, "--compiler", compiler, "--march=", "--no-journal")
	require.NoError(t, err)

	out, err := runCLI(t, "compile", "-C", root, "--compiler", compiler, "--march=", "--no-journal")
	require.NoError(t, err)
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "already current")
}

func TestCompileCommandRootNotFound(t *testing.T) {
	dir := t.TempDir() // no marker, no signals

	_, err := runCLI(t, "compile", "-C", dir, "--no-journal")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileCommandJSONOutput(t *testing.T) {
	root := newProject(t, map[string]string{"a.py": "a = 1"})
	compiler := fakeCompiler(t)

	out, err := runCLI(t, "compile", "-C", root, "--compiler", compiler, "--march=", "--no-journal", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Records []struct {
				Path    string              `json:"path"`
				Outcome build.OutcomeStatus `json:"outcome"`
			} `json:"records"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Records, 1)
	assert.Equal(t, "a.py", resp.Data.Records[0].Path)
	assert.Equal(t, build.OutcomeSucceeded, resp.Data.Records[0].Outcome)
}
