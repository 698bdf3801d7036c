package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListClientsInput holds parameters for iconect_list_clients.
type ListClientsInput struct {
	Page    int `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage int `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetClientInput holds parameters for iconect_get_client.
type GetClientInput struct {
	ClientID string `json:"clientId" jsonschema:"required,client organization identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetClientInput) Validate() error {
	return requireID("clientId", in.ClientID)
}

// CreateClientInput holds parameters for iconect_create_client.
type CreateClientInput struct {
	Name   string         `json:"name" jsonschema:"required,client organization display name"`
	Fields map[string]any `json:"fields,omitempty" jsonschema:"additional client fields passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateClientInput) Validate() error {
	return requireID("name", in.Name)
}

// UpdateClientInput holds parameters for iconect_update_client.
type UpdateClientInput struct {
	ClientID string         `json:"clientId" jsonschema:"required,client organization identifier"`
	Fields   map[string]any `json:"fields" jsonschema:"required,client fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateClientInput) Validate() error {
	if err := requireID("clientId", in.ClientID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteClientInput holds parameters for iconect_delete_client.
type DeleteClientInput struct {
	ClientID string `json:"clientId" jsonschema:"required,client organization identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteClientInput) Validate() error {
	return requireID("clientId", in.ClientID)
}

func (s *Service) clientCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_clients",
			"List client organizations.",
			func(ctx context.Context, in ListClientsInput) (any, string, error) {
				data, err := s.get(ctx, "/v1/clients", pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "clients listed", nil
			}),
		command.New("iconect_get_client",
			"Fetch a single client organization by identifier.",
			func(ctx context.Context, in GetClientInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("clients", in.ClientID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("client %s retrieved", in.ClientID), nil
			}),
		command.New("iconect_create_client",
			"Create a client organization.",
			func(ctx context.Context, in CreateClientInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name

				data, err := s.post(ctx, "/v1/clients", body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("client %s created", in.Name), nil
			}),
		command.New("iconect_update_client",
			"Update fields on an existing client organization.",
			func(ctx context.Context, in UpdateClientInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("clients", in.ClientID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("client %s updated", in.ClientID), nil
			}),
		command.New("iconect_delete_client",
			"Delete a client organization.",
			func(ctx context.Context, in DeleteClientInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("clients", in.ClientID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("client %s deleted", in.ClientID), nil
			}),
	}
}
