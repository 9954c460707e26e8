package resolve

import (
	"errors"
	"fmt"
)

// Failure classifies why a name could not be resolved.
type Failure int

const (
	// FailureNotFound means no entry with the requested name is registered.
	FailureNotFound Failure = iota
	// FailureMissingDependency means the entry exists but one of its
	// transitive requirements does not.
	FailureMissingDependency
	// FailureIncompatible means the entry exists but cannot be used, for
	// example because it was registered against a newer API version.
	FailureIncompatible
)

// String returns the string representation of the failure.
func (f Failure) String() string {
	switch f {
	case FailureNotFound:
		return "not found"
	case FailureMissingDependency:
		return "missing dependency"
	case FailureIncompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// Error is the classified resolution failure returned by Context
// implementations. Callers that need to branch on the failure mode should
// use the Is* helpers or Classify rather than unwrapping by hand.
type Error struct {
	// Name is the qualified name that failed to resolve
	Name string
	// Failure classifies the resolution failure
	Failure Failure
	// Dependency names the unmet requirement for FailureMissingDependency
	Dependency string
	// Cause holds the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Failure {
	case FailureMissingDependency:
		return fmt.Sprintf("resolve %s: missing dependency %s", e.Name, e.Dependency)
	case FailureIncompatible:
		if e.Cause != nil {
			return fmt.Sprintf("resolve %s: incompatible: %v", e.Name, e.Cause)
		}
		return fmt.Sprintf("resolve %s: incompatible", e.Name)
	default:
		return fmt.Sprintf("resolve %s: not found", e.Name)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether err is a resolution failure for an unregistered
// name.
func IsNotFound(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Failure == FailureNotFound
}

// IsMissingDependency reports whether err is a resolution failure caused by
// an unmet requirement.
func IsMissingDependency(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Failure == FailureMissingDependency
}

// IsIncompatible reports whether err is a resolution failure for an entry
// that exists but cannot be used.
func IsIncompatible(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Failure == FailureIncompatible
}

// Classify maps any resolution error onto the failure taxonomy. Errors that
// are not *Error are treated as incompatible, the broadest bucket, so that
// custom Context implementations degrade gracefully instead of aborting a
// load.
func Classify(err error) Failure {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Failure
	}
	return FailureIncompatible
}

// AsError extracts the classified resolution error from err's chain.
func AsError(err error) (*Error, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}
