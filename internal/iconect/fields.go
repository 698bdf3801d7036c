package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListFieldsInput holds parameters for iconect_list_fields.
type ListFieldsInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListFieldsInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetFieldInput holds parameters for iconect_get_field.
type GetFieldInput struct {
	FieldID string `json:"fieldId" jsonschema:"required,field identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetFieldInput) Validate() error {
	return requireID("fieldId", in.FieldID)
}

func (s *Service) fieldCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_fields",
			"List the field definitions of a project's database.",
			func(ctx context.Context, in ListFieldsInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "fields"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "fields listed", nil
			}),
		command.New("iconect_get_field",
			"Fetch a single field definition by identifier.",
			func(ctx context.Context, in GetFieldInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("fields", in.FieldID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("field %s retrieved", in.FieldID), nil
			}),
	}
}
