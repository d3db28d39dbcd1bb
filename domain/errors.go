package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrTaskNotFound   = NewError(ErrCodeNotFound, "task not found")
	ErrInvalidTaskID  = NewError(ErrCodeInvalid, "invalid task id")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")
)

// TaskNotFound returns ErrTaskNotFound annotated with the missing id.
func TaskNotFound(id int64) error {
	return fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
}

// IsDomainError reports whether err, or anything it wraps, carries code.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
