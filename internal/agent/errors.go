// internal/agent/errors.go
package agent

import (
	"errors"
	"fmt"
)

// ErrorCode is a string type used for structured error reporting from the
// exploration loop and its page drivers.
type ErrorCode string

const (
	// -- Fatal --
	ErrCodeNavigationError ErrorCode = "NAVIGATION_ERROR"

	// -- Recoverable, absorbed where they occur --
	ErrCodeElementNotFound  ErrorCode = "ELEMENT_NOT_FOUND"
	ErrCodeUnknownAction    ErrorCode = "UNKNOWN_ACTION_TYPE"
	ErrCodeFeatureDisabled  ErrorCode = "FEATURE_DISABLED"
	ErrCodeInvalidCandidate ErrorCode = "INVALID_CANDIDATE"

	// -- Internal --
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
)

var (
	// ErrUnknownKind is returned by ParseCandidate for kinds outside the action vocabulary.
	ErrUnknownKind = errors.New("unknown action kind")
	// ErrMalformedCandidate is returned when a candidate string has no "kind:target" separator.
	ErrMalformedCandidate = errors.New("malformed candidate")
)

// NavigationError reports that the page driver could not open the start URL.
// It is the only error that ends a run before the first observation.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Code returns the structured code for this error.
func (e *NavigationError) Code() ErrorCode { return ErrCodeNavigationError }

// TransitionError is returned when a RunContext is asked to move along an edge
// the state machine does not have.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

// Code returns the structured code for this error.
func (e *TransitionError) Code() ErrorCode { return ErrCodeInvalidTransition }
