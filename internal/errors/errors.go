// Package errors defines the classified error type carried from every
// gateway layer to the response envelope.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a failure for envelope reporting.
type Code string

const (
	// CodeConfiguration covers invalid or incomplete gateway configuration.
	CodeConfiguration Code = "CONFIGURATION_ERROR"

	// CodeAuthentication covers rejected grants, failed refreshes and
	// upstream 401 responses that survived the replay attempt.
	CodeAuthentication Code = "AUTHENTICATION_ERROR"

	// CodeValidation covers command input that fails schema or semantic checks.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeNotConfigured is returned for any command dispatched before
	// the gateway has been configured.
	CodeNotConfigured Code = "NOT_CONFIGURED"

	// CodeUnknownTool is returned when the command name has no registration.
	CodeUnknownTool Code = "UNKNOWN_TOOL"

	// CodeTransport covers network-level failures reaching the platform.
	CodeTransport Code = "TRANSPORT_ERROR"

	// CodeUpstream covers non-401 error responses from the platform.
	CodeUpstream Code = "UPSTREAM_ERROR"

	// CodeInternal covers bugs: panics, impossible states, encoding failures.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is a classified gateway failure. StatusCode is the associated HTTP
// status when one exists (the upstream response status, or the conventional
// status for the class), zero otherwise.
type Error struct {
	Code       Code
	Message    string
	StatusCode int
	Details    map[string]any
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The underlying error remains
// reachable through errors.Unwrap for inspection and tests.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithStatus returns a copy of e carrying the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.StatusCode = status

	return &clone
}

// WithDetails returns a copy of e carrying structured detail fields.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details

	return &clone
}

// From extracts the classified error from err's chain. Errors that were
// never classified are reported as internal: anything reaching the envelope
// unclassified is a bug in the layer that produced it.
func From(err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}

	return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
}

// HasCode reports whether err carries the given code in its chain.
func HasCode(err error, code Code) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}
