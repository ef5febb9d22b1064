package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	j1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j1.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j2.Close())
}

func TestWriteAndListRuns(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.WriteRun(ctx, RunRecord{
		ID: "run-1", Command: "compile", Root: "/proj",
		StartedAt: base, Succeeded: 3, Skipped: 1,
	}))
	require.NoError(t, j.WriteRun(ctx, RunRecord{
		ID: "run-2", Command: "export", Mode: "precompiled", Root: "/proj",
		StartedAt: base.Add(time.Hour), Succeeded: 2, Failed: 1, Copied: 4,
		FailedPaths: []string{"bad.py"},
	}))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "export", runs[0].Command)
	assert.Equal(t, "precompiled", runs[0].Mode)
	assert.Equal(t, []string{"bad.py"}, runs[0].FailedPaths)
	assert.Equal(t, 4, runs[0].Copied)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(time.Hour)))

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Nil(t, runs[1].FailedPaths)
}

func TestListRunsLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.WriteRun(ctx, RunRecord{
			Command: "compile", Root: "/proj",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := j.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestWriteRunDuplicateIDIgnored(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	rec := RunRecord{ID: "dup", Command: "compile", Root: "/proj", Succeeded: 1}
	require.NoError(t, j.WriteRun(ctx, rec))
	rec.Succeeded = 99
	require.NoError(t, j.WriteRun(ctx, rec))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Succeeded)
}

func TestWriteRunDefaults(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.WriteRun(ctx, RunRecord{Command: "compile", Root: "/proj"}))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.NotEmpty(t, runs[0].ID)
	assert.False(t, runs[0].StartedAt.IsZero())
}
