package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// upstreamMessage pulls a human-readable message out of an error body.
// The platform is not consistent about error shape across endpoints, so
// several paths are probed before giving up.
func upstreamMessage(body []byte) string {
	for _, path := range []string{"message", "error.message", "error_description", "detail"} {
		if res := gjson.GetBytes(body, path); res.Type == gjson.String && res.Str != "" {
			return res.Str
		}
	}

	// "error" is an object on some endpoints and a bare string on the
	// token endpoint; only the string form is a message.
	if res := gjson.GetBytes(body, "error"); res.Type == gjson.String && res.Str != "" {
		return res.Str
	}

	return ""
}

// decodeDetails returns the error body as structured details when it is a
// JSON object, nil otherwise.
func decodeDetails(body []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil || len(m) == 0 {
		return nil
	}

	return m
}

// transportError classifies a send failure. Errors already carrying a
// classification (bad URL, unmarshallable body) pass through untouched.
func transportError(err error) error {
	var ge *iconerr.Error
	if errors.As(err, &ge) {
		return err
	}

	return iconerr.Wrap(iconerr.CodeTransport, err, "platform request failed")
}

func authError(body []byte) error {
	msg := upstreamMessage(body)
	if msg == "" {
		msg = "platform rejected the request credentials"
	}

	return iconerr.New(iconerr.CodeAuthentication, msg).
		WithStatus(http.StatusUnauthorized).
		WithDetails(decodeDetails(body))
}

func validationError(body []byte) error {
	msg := upstreamMessage(body)
	if msg == "" {
		msg = "platform rejected the request input"
	}

	return iconerr.New(iconerr.CodeValidation, msg).
		WithStatus(http.StatusBadRequest).
		WithDetails(decodeDetails(body))
}

func upstreamError(status int, body []byte) error {
	msg := upstreamMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("platform returned status %d", status)
		if len(body) > 0 {
			msg += ": " + sanitizeResponseBody(body)
		}
	}

	return iconerr.New(iconerr.CodeUpstream, msg).
		WithStatus(status).
		WithDetails(decodeDetails(body))
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	// Ensure valid UTF-8 and replace control characters.
	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}
