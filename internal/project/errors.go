package project

import (
	"fmt"
	"path/filepath"
)

// RootNotFoundError reports that no project root could be established from
// the starting directory. It is fatal: without a root there is no safe scope
// to operate in, so the entire run aborts before any file work begins.
type RootNotFoundError struct {
	// Start is the directory the upward search began from.
	Start string

	// Reason explains why resolution failed (no marker found, package
	// directory missing, etc).
	Reason string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("project root not found from %s: %s", e.Start, e.Reason)
}

// MissingDirectoryError reports that a directory an operation requires is
// absent and no override was given. Fatal for that operation only.
type MissingDirectoryError struct {
	// Path is the absolute path of the missing directory.
	Path string

	// Root is the resolved project root, used to report the path relative
	// to the project rather than as a bare absolute path.
	Root string
}

func (e *MissingDirectoryError) Error() string {
	rel, err := filepath.Rel(e.Root, e.Path)
	if err != nil {
		rel = e.Path
	}
	return fmt.Sprintf("required directory missing: %s (relative to project root %s)", rel, e.Root)
}
