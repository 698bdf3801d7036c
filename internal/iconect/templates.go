package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListTemplatesInput holds parameters for iconect_list_templates.
type ListTemplatesInput struct {
	Type    string `json:"type,omitempty" jsonschema:"filter by template type"`
	Page    int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetTemplateInput holds parameters for iconect_get_template.
type GetTemplateInput struct {
	TemplateID string `json:"templateId" jsonschema:"required,template identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetTemplateInput) Validate() error {
	return requireID("templateId", in.TemplateID)
}

// ApplyTemplateInput holds parameters for iconect_apply_template.
type ApplyTemplateInput struct {
	TemplateID string         `json:"templateId" jsonschema:"required,template identifier"`
	ProjectID  string         `json:"projectId" jsonschema:"required,project to apply the template to"`
	Fields     map[string]any `json:"fields,omitempty" jsonschema:"template parameters passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ApplyTemplateInput) Validate() error {
	if err := requireID("templateId", in.TemplateID); err != nil {
		return err
	}

	return requireID("projectId", in.ProjectID)
}

func (s *Service) templateCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_templates",
			"List templates available on the platform.",
			func(ctx context.Context, in ListTemplatesInput) (any, string, error) {
				q := pageQuery(in.Page, in.PerPage)
				if in.Type != "" {
					q.Set("type", in.Type)
				}

				data, err := s.get(ctx, "/v1/templates", q)
				if err != nil {
					return nil, "", err
				}

				return data, "templates listed", nil
			}),
		command.New("iconect_get_template",
			"Fetch a single template by identifier.",
			func(ctx context.Context, in GetTemplateInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("templates", in.TemplateID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("template %s retrieved", in.TemplateID), nil
			}),
		command.New("iconect_apply_template",
			"Apply a template to a project.",
			func(ctx context.Context, in ApplyTemplateInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["project_id"] = in.ProjectID

				data, err := s.post(ctx, "/v1"+idPath("templates", in.TemplateID, "apply"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("template %s applied to project %s", in.TemplateID, in.ProjectID), nil
			}),
	}
}
