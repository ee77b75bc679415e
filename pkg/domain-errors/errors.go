// Package domainerrors provides coded errors for the memscope domain.
//
// Services return these so transport layers can translate outcomes into
// stable wire codes without string matching. Infrastructure layers return
// sentinel errors (pkg/platform/sentinel) instead; services wrap those into
// coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure visible at the API boundary.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers malformed write input: unknown value shape,
	// out-of-range TTL, payload that cannot coerce to its shape schema.
	CodeValidation Code = "validation_error"
	// CodePolicyDenied means the purpose class is not allowed for the scope.
	CodePolicyDenied Code = "policy_denied"
	// CodeAccessDenied is the uniform outcome for token resolution failures
	// (not found, revoked, expired). The distinct reason is audited, never
	// disclosed, so callers cannot probe whether a token ever existed.
	CodeAccessDenied Code = "access_denied"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	// CodeInfrastructure means the durable store was unavailable. Not retried
	// inside the core; retry policy belongs to the caller.
	CodeInfrastructure Code = "infrastructure_error"
	CodeInternal       Code = "internal_error"
)

// Error is a coded domain error. Compare with HasCode, not type assertions.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/As for logging; only code and message are
// surfaced to callers.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err is uncoded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message of err, or empty when uncoded.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
