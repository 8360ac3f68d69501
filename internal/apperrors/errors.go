package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the actor lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState indicates the entity is not in a state that permits the operation.
var ErrInvalidState = errors.New("invalid state")

// ErrPreconditionFailed indicates required data for the operation is missing.
var ErrPreconditionFailed = errors.New("precondition failed")

// ErrNotRequired indicates an optional approval step was invoked where it does not apply.
var ErrNotRequired = errors.New("not required")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error that matches ErrNotFound with errors.Is.
func NewNotFoundError(entity string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, entity)
}
