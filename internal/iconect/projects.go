package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListProjectsInput holds parameters for iconect_list_projects.
type ListProjectsInput struct {
	ClientID string `json:"clientId,omitempty" jsonschema:"restrict the listing to one client organization"`
	Page     int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage  int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetProjectInput holds parameters for iconect_get_project.
type GetProjectInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetProjectInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// CreateProjectInput holds parameters for iconect_create_project.
type CreateProjectInput struct {
	Name     string         `json:"name" jsonschema:"required,project display name"`
	ClientID string         `json:"clientId,omitempty" jsonschema:"client organization that owns the project"`
	Fields   map[string]any `json:"fields,omitempty" jsonschema:"additional project fields passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateProjectInput) Validate() error {
	return requireID("name", in.Name)
}

// UpdateProjectInput holds parameters for iconect_update_project.
type UpdateProjectInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Fields    map[string]any `json:"fields" jsonschema:"required,project fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateProjectInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteProjectInput holds parameters for iconect_delete_project.
type DeleteProjectInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteProjectInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

func (s *Service) projectCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_projects",
			"List review projects visible to the authenticated user.",
			func(ctx context.Context, in ListProjectsInput) (any, string, error) {
				q := pageQuery(in.Page, in.PerPage)
				if in.ClientID != "" {
					q.Set("client_id", in.ClientID)
				}

				data, err := s.get(ctx, "/v1/projects", q)
				if err != nil {
					return nil, "", err
				}

				return data, "projects listed", nil
			}),
		command.New("iconect_get_project",
			"Fetch a single review project by identifier.",
			func(ctx context.Context, in GetProjectInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("project %s retrieved", in.ProjectID), nil
			}),
		command.New("iconect_create_project",
			"Create a review project.",
			func(ctx context.Context, in CreateProjectInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name
				if in.ClientID != "" {
					body["client_id"] = in.ClientID
				}

				data, err := s.post(ctx, "/v1/projects", body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("project %s created", in.Name), nil
			}),
		command.New("iconect_update_project",
			"Update fields on an existing review project.",
			func(ctx context.Context, in UpdateProjectInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("projects", in.ProjectID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("project %s updated", in.ProjectID), nil
			}),
		command.New("iconect_delete_project",
			"Delete a review project. This cannot be undone on the platform side.",
			func(ctx context.Context, in DeleteProjectInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("projects", in.ProjectID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("project %s deleted", in.ProjectID), nil
			}),
	}
}
