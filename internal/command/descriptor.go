// Package command defines the gateway's command model: typed descriptors
// with derived input schemas, the registry built at configure time, and the
// envelope every dispatch produces.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// Validator is implemented by inputs with semantic checks beyond what the
// schema expresses, such as identifiers that must be non-empty.
type Validator interface {
	Validate() error
}

// Descriptor describes one registered command. Schema is derived from the
// handler's input type and doubles as the advertised tool schema.
type Descriptor struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema

	resolved *jsonschema.Resolved
	handler  func(ctx context.Context, raw json.RawMessage) (any, string, error)
}

// New builds a Descriptor for a typed handler. The input schema is derived
// from In's struct tags the same way the MCP SDK derives tool schemas;
// arguments are validated against it, decoded, semantically validated when
// In implements Validator, and only then handed to fn.
//
// Schema derivation failures are wiring bugs, so New panics on them the
// same way the SDK's typed tool registration does.
func New[In any](name, description string, fn func(ctx context.Context, in In) (any, string, error)) Descriptor {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("deriving input schema for %s: %v", name, err))
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("resolving input schema for %s: %v", name, err))
	}

	return Descriptor{
		Name:        name,
		Description: description,
		Schema:      schema,
		resolved:    resolved,
		handler: func(ctx context.Context, raw json.RawMessage) (any, string, error) {
			// Clients calling without arguments send nothing or null.
			if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				raw = json.RawMessage(`{}`)
			}

			var instance any
			if err := json.Unmarshal(raw, &instance); err != nil {
				return nil, "", iconerr.Newf(iconerr.CodeValidation, "arguments are not valid JSON: %v", err).
					WithStatus(400)
			}

			if err := resolved.Validate(instance); err != nil {
				return nil, "", iconerr.Newf(iconerr.CodeValidation, "invalid arguments: %v", err).
					WithStatus(400)
			}

			var in In
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, "", iconerr.Newf(iconerr.CodeValidation, "decoding arguments: %v", err).
					WithStatus(400)
			}

			if v, ok := any(in).(Validator); ok {
				if err := v.Validate(); err != nil {
					if iconerr.HasCode(err, iconerr.CodeValidation) {
						return nil, "", err
					}

					return nil, "", iconerr.Newf(iconerr.CodeValidation, "%v", err).WithStatus(400)
				}
			}

			return fn(ctx, in)
		},
	}
}

// Invoke validates raw arguments and runs the handler. data is the success
// payload, message a one-line human summary.
func (d Descriptor) Invoke(ctx context.Context, raw json.RawMessage) (data any, message string, err error) {
	return d.handler(ctx, raw)
}
