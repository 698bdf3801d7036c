package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListViewsInput holds parameters for iconect_list_views.
type ListViewsInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListViewsInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetViewInput holds parameters for iconect_get_view.
type GetViewInput struct {
	ViewID string `json:"viewId" jsonschema:"required,view identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetViewInput) Validate() error {
	return requireID("viewId", in.ViewID)
}

// CreateViewInput holds parameters for iconect_create_view.
type CreateViewInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Name      string         `json:"name" jsonschema:"required,view display name"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"view configuration passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateViewInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("name", in.Name)
}

// UpdateViewInput holds parameters for iconect_update_view.
type UpdateViewInput struct {
	ViewID string         `json:"viewId" jsonschema:"required,view identifier"`
	Fields map[string]any `json:"fields" jsonschema:"required,view fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateViewInput) Validate() error {
	if err := requireID("viewId", in.ViewID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteViewInput holds parameters for iconect_delete_view.
type DeleteViewInput struct {
	ViewID string `json:"viewId" jsonschema:"required,view identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteViewInput) Validate() error {
	return requireID("viewId", in.ViewID)
}

func (s *Service) viewCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_views",
			"List record views configured in a project.",
			func(ctx context.Context, in ListViewsInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "views"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "views listed", nil
			}),
		command.New("iconect_get_view",
			"Fetch a single view by identifier.",
			func(ctx context.Context, in GetViewInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("views", in.ViewID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("view %s retrieved", in.ViewID), nil
			}),
		command.New("iconect_create_view",
			"Create a record view in a project.",
			func(ctx context.Context, in CreateViewInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "views"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("view %s created", in.Name), nil
			}),
		command.New("iconect_update_view",
			"Update fields on an existing view.",
			func(ctx context.Context, in UpdateViewInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("views", in.ViewID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("view %s updated", in.ViewID), nil
			}),
		command.New("iconect_delete_view",
			"Delete a view.",
			func(ctx context.Context, in DeleteViewInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("views", in.ViewID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("view %s deleted", in.ViewID), nil
			}),
	}
}
