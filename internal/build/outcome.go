package build

// OutcomeStatus is the per-file result category of a compile batch.
type OutcomeStatus string

const (
	// OutcomeSucceeded means the compiler exited zero and wrote the artifact.
	OutcomeSucceeded OutcomeStatus = "succeeded"

	// OutcomeFailed means the compiler failed for this file only; the batch
	// continues.
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeSkipped means the artifact was already current, so no
	// subprocess was invoked.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome is one file's compile result.
type Outcome struct {
	Status OutcomeStatus

	// Reason carries the captured stderr and exit status verbatim when
	// Status is OutcomeFailed, empty otherwise. No interpretation is
	// applied: compiler errors are source-code errors for the user to read.
	Reason string
}
