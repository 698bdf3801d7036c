package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListPanelsInput holds parameters for iconect_list_panels.
type ListPanelsInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListPanelsInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetPanelInput holds parameters for iconect_get_panel.
type GetPanelInput struct {
	PanelID string `json:"panelId" jsonschema:"required,panel identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetPanelInput) Validate() error {
	return requireID("panelId", in.PanelID)
}

// CreatePanelInput holds parameters for iconect_create_panel.
type CreatePanelInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Name      string         `json:"name" jsonschema:"required,panel display name"`
	Type      string         `json:"type,omitempty" jsonschema:"panel type, platform default when omitted"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"additional panel configuration passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreatePanelInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("name", in.Name)
}

// UpdatePanelInput holds parameters for iconect_update_panel.
type UpdatePanelInput struct {
	PanelID string         `json:"panelId" jsonschema:"required,panel identifier"`
	Fields  map[string]any `json:"fields" jsonschema:"required,panel fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdatePanelInput) Validate() error {
	if err := requireID("panelId", in.PanelID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeletePanelInput holds parameters for iconect_delete_panel.
type DeletePanelInput struct {
	PanelID string `json:"panelId" jsonschema:"required,panel identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeletePanelInput) Validate() error {
	return requireID("panelId", in.PanelID)
}

func (s *Service) panelCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_panels",
			"List review panels configured in a project.",
			func(ctx context.Context, in ListPanelsInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "panels"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "panels listed", nil
			}),
		command.New("iconect_get_panel",
			"Fetch a single panel by identifier.",
			func(ctx context.Context, in GetPanelInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("panels", in.PanelID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("panel %s retrieved", in.PanelID), nil
			}),
		command.New("iconect_create_panel",
			"Create a review panel in a project.",
			func(ctx context.Context, in CreatePanelInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name
				if in.Type != "" {
					body["type"] = in.Type
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "panels"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("panel %s created", in.Name), nil
			}),
		command.New("iconect_update_panel",
			"Update fields on an existing panel.",
			func(ctx context.Context, in UpdatePanelInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("panels", in.PanelID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("panel %s updated", in.PanelID), nil
			}),
		command.New("iconect_delete_panel",
			"Delete a panel.",
			func(ctx context.Context, in DeletePanelInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("panels", in.PanelID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("panel %s deleted", in.PanelID), nil
			}),
	}
}
