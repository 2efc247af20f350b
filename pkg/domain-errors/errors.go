// Package derrors provides coded domain errors shared by services and the
// HTTP layer. Services create or wrap errors with a Code; the transport layer
// maps codes to HTTP statuses without inspecting error strings.
//
// Stores do not use this package. They return pkg/platform/sentinel errors
// (factual infrastructure states) which services translate into domain errors.
package derrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and logging.
type Code string

const (
	// CodeValidation marks field-level validation failures. The error carries
	// a per-field message map and aborts the save with no persisted change.
	CodeValidation Code = "validation_failed"
	// CodeBadRequest marks malformed requests rejected before any repository
	// or permission call (non-numeric ids, unrecognized view names).
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks ids that do not resolve to a record.
	CodeNotFound Code = "not_found"
	// CodePermissionDenied marks denials from the permission gateway, and
	// gateway failures which are surfaced as denial-equivalent.
	CodePermissionDenied Code = "permission_denied"
	// CodeConflict marks operations invalid in the record's current state.
	CodeConflict Code = "conflict"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Fields is populated only for CodeValidation.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// NewValidation creates a field-level validation error. The map keys are
// field names, values are human-readable messages.
func NewValidation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// HasCode reports whether err (or any error in its chain) is a domain error
// with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal
// for non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf extracts validation field messages from an error chain, or nil.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
