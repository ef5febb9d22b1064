package export

import "fmt"

// CopyError reports one file's copy failure (permissions, disk full).
// Local to that file: recorded in the reconciliation result, never raised
// across the batch.
type CopyError struct {
	// Path is the destination-relative path that failed.
	Path string

	// Err is the underlying filesystem error.
	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
