package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListDashboardsInput holds parameters for iconect_list_dashboards.
type ListDashboardsInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListDashboardsInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetDashboardInput holds parameters for iconect_get_dashboard.
type GetDashboardInput struct {
	DashboardID string `json:"dashboardId" jsonschema:"required,dashboard identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetDashboardInput) Validate() error {
	return requireID("dashboardId", in.DashboardID)
}

// CreateDashboardInput holds parameters for iconect_create_dashboard.
type CreateDashboardInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Name      string         `json:"name" jsonschema:"required,dashboard display name"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"dashboard configuration passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateDashboardInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("name", in.Name)
}

// UpdateDashboardInput holds parameters for iconect_update_dashboard.
type UpdateDashboardInput struct {
	DashboardID string         `json:"dashboardId" jsonschema:"required,dashboard identifier"`
	Fields      map[string]any `json:"fields" jsonschema:"required,dashboard fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateDashboardInput) Validate() error {
	if err := requireID("dashboardId", in.DashboardID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteDashboardInput holds parameters for iconect_delete_dashboard.
type DeleteDashboardInput struct {
	DashboardID string `json:"dashboardId" jsonschema:"required,dashboard identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteDashboardInput) Validate() error {
	return requireID("dashboardId", in.DashboardID)
}

func (s *Service) dashboardCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_dashboards",
			"List dashboards configured in a project.",
			func(ctx context.Context, in ListDashboardsInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "dashboards"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "dashboards listed", nil
			}),
		command.New("iconect_get_dashboard",
			"Fetch a single dashboard by identifier.",
			func(ctx context.Context, in GetDashboardInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("dashboards", in.DashboardID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("dashboard %s retrieved", in.DashboardID), nil
			}),
		command.New("iconect_create_dashboard",
			"Create a dashboard in a project.",
			func(ctx context.Context, in CreateDashboardInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "dashboards"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("dashboard %s created", in.Name), nil
			}),
		command.New("iconect_update_dashboard",
			"Update fields on an existing dashboard.",
			func(ctx context.Context, in UpdateDashboardInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("dashboards", in.DashboardID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("dashboard %s updated", in.DashboardID), nil
			}),
		command.New("iconect_delete_dashboard",
			"Delete a dashboard.",
			func(ctx context.Context, in DeleteDashboardInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("dashboards", in.DashboardID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("dashboard %s deleted", in.DashboardID), nil
			}),
	}
}
