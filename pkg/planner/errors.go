package planner

import (
	"errors"
	"fmt"
)

// ErrorCode classifies the recoverable failures of store operations so that
// transport layers can map them to a user-facing notice without string
// matching.
type ErrorCode string

const (
	ErrCodeValidation  ErrorCode = "VALIDATION"
	ErrCodePermission  ErrorCode = "PERMISSION"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodePersistence ErrorCode = "PERSISTENCE"
)

// Error is the domain error returned by the store. None of these are fatal:
// the collection is unchanged (persistence failures are rolled back) and the
// caller is expected to surface the message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionError(format string, args ...any) *Error {
	return &Error{Code: ErrCodePermission, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewPersistenceError(message string, err error) *Error {
	return &Error{Code: ErrCodePersistence, Message: message, Err: err}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
