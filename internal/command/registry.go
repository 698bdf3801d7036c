package command

import (
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// Registry is the immutable command set built once per configure. It is
// never mutated after construction, so reads need no locking.
type Registry struct {
	names   []string
	entries map[string]Descriptor
}

// NewRegistry builds a registry from descriptor groups, preserving
// registration order for stable tool listings. A duplicate or empty name
// is a wiring bug and fails the build.
func NewRegistry(groups ...[]Descriptor) (*Registry, error) {
	r := &Registry{entries: make(map[string]Descriptor)}

	for _, group := range groups {
		for _, d := range group {
			if d.Name == "" {
				return nil, iconerr.New(iconerr.CodeConfiguration, "command registered with empty name")
			}

			if _, exists := r.entries[d.Name]; exists {
				return nil, iconerr.Newf(iconerr.CodeConfiguration, "duplicate command name %q", d.Name)
			}

			r.entries[d.Name] = d
			r.names = append(r.names, d.Name)
		}
	}

	return r, nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.entries[name]
	return d, ok
}

// Names returns command names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// All returns descriptors in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.entries[name])
	}

	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.names)
}
