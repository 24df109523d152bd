// Package domainerrors defines coded errors shared by services and handlers.
//
// Services attach a Code describing the failure class; handlers translate the
// code to an HTTP status. Stores do not use this package directly — they
// return pkg/platform/sentinel errors which services wrap into coded errors.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers authorization failures: the caller is authenticated
	// but is not the recorded owner of the resource.
	CodeForbidden Code = "forbidden"
	CodeNotFound  Code = "not_found"
	CodeConflict  Code = "conflict"
	// CodePaymentMismatch rejects payments that are not exactly the required
	// amount. Excess is rejected, not refunded with change.
	CodePaymentMismatch Code = "payment_mismatch"
	// CodeTooEarly rejects operations attempted before their window opens
	// (claim before the locking period elapses).
	CodeTooEarly Code = "too_early"
	// CodeOutsideWindow rejects operations attempted outside their half-open
	// validity window (renew outside [renewableFrom, lockedUntil)).
	CodeOutsideWindow      Code = "outside_window"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error. It may wrap an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal if it has none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message carried by err, or a generic
// message if it has none. Internal causes are never exposed to callers.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a failure class to its HTTP status code.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePaymentMismatch:
		return http.StatusPaymentRequired
	case CodeTooEarly, CodeOutsideWindow:
		return http.StatusTooEarly
	case CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
