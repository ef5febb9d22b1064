package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one completed run's summary.
type RunRecord struct {
	ID          string    `json:"id"`
	Command     string    `json:"command"`
	Mode        string    `json:"mode,omitempty"`
	Root        string    `json:"root"`
	StartedAt   time.Time `json:"started_at"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Copied      int       `json:"copied"`
	FailedPaths []string  `json:"failed_paths,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WriteRun appends one run record. Duplicate IDs are silently ignored so a
// retried write stays idempotent.
func (j *Journal) WriteRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		rec.ID = NewRunID()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}

	paths := rec.FailedPaths
	if paths == nil {
		paths = []string{}
	}
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, command, mode, root, started_at, succeeded, failed, skipped, copied, failed_paths)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Command,
		rec.Mode,
		rec.Root,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.Succeeded,
		rec.Failed,
		rec.Skipped,
		rec.Copied,
		string(pathsJSON),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, ID as a tiebreak for
// deterministic results. A non-positive limit returns everything.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, command, mode, root, started_at, succeeded, failed, skipped, copied, failed_paths
		FROM runs
		ORDER BY started_at DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt, pathsJSON string
		if err := rows.Scan(&rec.ID, &rec.Command, &rec.Mode, &rec.Root, &startedAt,
			&rec.Succeeded, &rec.Failed, &rec.Skipped, &rec.Copied, &pathsJSON); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}

		rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("list runs: parsing started_at: %w", err)
		}
		if err := json.Unmarshal([]byte(pathsJSON), &rec.FailedPaths); err != nil {
			return nil, fmt.Errorf("list runs: parsing failed_paths: %w", err)
		}
		if len(rec.FailedPaths) == 0 {
			rec.FailedPaths = nil
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
