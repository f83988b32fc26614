package jobs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for unknown job identifiers, including jobs
// that have already been deleted or evicted.
var ErrNotFound = errors.New("job not found")

// InvalidStateError reports an operation attempted against a job that
// is not in the state the operation requires.
type InvalidStateError struct {
	ID     string
	Status Status
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s job %s in state %q", e.Op, e.ID, e.Status)
}

// UploadError reports a payload rejected before any job state was
// created: oversized uploads, empty uploads, or undeclared formats.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string { return e.Reason }
