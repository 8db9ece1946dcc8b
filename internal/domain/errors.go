package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID   = "invalid"         // Invalid input or validation failure
	ENOTFOUND  = "not_found"       // Resource not found
	ECONFLICT  = "conflict"        // Conflicting state (e.g., submission already in flight)
	ERATELIMIT = "rate_limit"      // Rate limit exceeded
	EDISPATCH  = "dispatch_failed" // External email dispatch rejected the submission
	EINTERNAL  = "internal"        // Internal server error
)

// Field-level validation kinds
const (
	EREQUIRED = "required"       // Mandatory field was empty
	EFORMAT   = "invalid_format" // Field violated its expected syntax
	EENUM     = "invalid_enum"   // Value is not a member of a closed enumeration
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "lead.dispatch")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		// For internal errors, return generic message
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Op
	}
	return ""
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// RateLimit creates a rate limit error.
func RateLimit(op string) *Error {
	return &Error{
		Code:    ERATELIMIT,
		Op:      op,
		Message: "Too many requests. Please try again later.",
	}
}

// DispatchFailure creates an error for a rejected external send.
// The message is shown to the user, so it should carry the service's
// reason when one is known.
func DispatchFailure(err error, op, message string) *Error {
	return &Error{
		Code:    EDISPATCH,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents field-level validation errors.
type ValidationError struct {
	Op     string
	Fields map[string]string // field -> human-readable message
	Kinds  map[string]string // field -> EREQUIRED, EFORMAT or EENUM
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed", e.Op)
}

// Kind returns the validation kind recorded for field, or "" if the field passed.
func (e *ValidationError) Kind(field string) string {
	if e == nil || e.Kinds == nil {
		return ""
	}
	return e.Kinds[field]
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Fields[field]
	return ok
}

// NewValidationError creates a new validation error with the first field error.
func NewValidationError(op, field, kind, message string) *ValidationError {
	return &ValidationError{
		Op: op,
		Fields: map[string]string{
			field: message,
		},
		Kinds: map[string]string{
			field: kind,
		},
	}
}

// AddFieldError adds a field error to an existing validation error.
// If err is not a ValidationError, returns a new one.
func AddFieldError(err error, field, kind, message string) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Fields == nil {
			ve.Fields = make(map[string]string)
		}
		if ve.Kinds == nil {
			ve.Kinds = make(map[string]string)
		}
		ve.Fields[field] = message
		ve.Kinds[field] = kind
		return ve
	}
	return NewValidationError("", field, kind, message)
}
