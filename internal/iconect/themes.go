package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListThemesInput holds parameters for iconect_list_themes.
type ListThemesInput struct {
	Page    int `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage int `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetThemeInput holds parameters for iconect_get_theme.
type GetThemeInput struct {
	ThemeID string `json:"themeId" jsonschema:"required,theme identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetThemeInput) Validate() error {
	return requireID("themeId", in.ThemeID)
}

// ActivateThemeInput holds parameters for iconect_activate_theme.
type ActivateThemeInput struct {
	ThemeID   string `json:"themeId" jsonschema:"required,theme identifier"`
	ProjectID string `json:"projectId,omitempty" jsonschema:"activate for one project only, platform-wide when omitted"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ActivateThemeInput) Validate() error {
	return requireID("themeId", in.ThemeID)
}

func (s *Service) themeCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_themes",
			"List interface themes available on the platform.",
			func(ctx context.Context, in ListThemesInput) (any, string, error) {
				data, err := s.get(ctx, "/v1/themes", pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "themes listed", nil
			}),
		command.New("iconect_get_theme",
			"Fetch a single theme by identifier.",
			func(ctx context.Context, in GetThemeInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("themes", in.ThemeID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("theme %s retrieved", in.ThemeID), nil
			}),
		command.New("iconect_activate_theme",
			"Activate a theme platform-wide or for one project.",
			func(ctx context.Context, in ActivateThemeInput) (any, string, error) {
				var body any
				if in.ProjectID != "" {
					body = map[string]any{"project_id": in.ProjectID}
				}

				data, err := s.post(ctx, "/v1"+idPath("themes", in.ThemeID, "activate"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("theme %s activated", in.ThemeID), nil
			}),
	}
}
