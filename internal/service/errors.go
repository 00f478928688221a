package service

import "fmt"

// Service errors come in three client-facing classes. Anything else returned
// by a service is a store fault and maps to a 500.

// ValidationError rejects malformed or missing input before any state change.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// PreconditionError reports a state-machine step invoked out of order. The
// message names the specific unmet condition.
type PreconditionError struct {
	msg string
}

func NewPreconditionError(format string, args ...any) *PreconditionError {
	return &PreconditionError{msg: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string { return e.msg }

// NotFoundError reports an absent referenced record.
type NotFoundError struct {
	msg string
}

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.msg }
