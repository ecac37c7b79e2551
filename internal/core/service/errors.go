package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Storage errors never reach callers unclassified:
// everything the service returns matches exactly one of these kinds
// via errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidState marks corrupt stored data, e.g. a requirement
	// list that does not decode. Not a user error.
	ErrInvalidState = errors.New("invalid stored state")
)

// Error pairs a user-facing message with an error kind.
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InsufficientPartsError reports every required part whose pooled
// inventory cannot cover the plane's requirement list, not just the
// first one encountered.
type InsufficientPartsError struct {
	PlaneName string
	PartNames []string
}

func (e *InsufficientPartsError) Error() string {
	return fmt.Sprintf("There is no %s to create %s.", strings.Join(e.PartNames, ", "), e.PlaneName)
}

func (e *InsufficientPartsError) Unwrap() error { return ErrInsufficientStock }
