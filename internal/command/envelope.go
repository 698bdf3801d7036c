package command

import (
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// Envelope is the uniform response shape every dispatch produces: exactly
// one of Data or Error is populated, never both.
type Envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

// EnvelopeError is the failure block of an Envelope.
type EnvelopeError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope from a classified error. Unclassified
// errors surface as INTERNAL_ERROR.
func Fail(err error) Envelope {
	ge := iconerr.From(err)

	return Envelope{
		Success: false,
		Error: &EnvelopeError{
			Code:       string(ge.Code),
			Message:    ge.Message,
			StatusCode: ge.StatusCode,
			Details:    ge.Details,
		},
	}
}
