package progress

import (
	"errors"
	"fmt"
)

// ParseError reasons.
const (
	ReasonNotFound        = "not-found"
	ReasonNoEligibleTasks = "no-eligible-tasks"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrNotFound means the document path did not resolve to a readable file.
	ErrNotFound = errors.New("progress document not found")

	// ErrNoEligibleTasks means the document parsed but contains no pending or
	// in-progress tasks. Callers must treat this as "work complete", not as a
	// hard failure.
	ErrNoEligibleTasks = errors.New("no eligible tasks")
)

// ParseError is returned when a document cannot be turned into a non-empty
// eligible task sequence.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is maps reasons onto the package sentinels.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Reason == ReasonNotFound
	case ErrNoEligibleTasks:
		return e.Reason == ReasonNoEligibleTasks
	}
	return false
}
