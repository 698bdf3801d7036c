package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListUsersInput holds parameters for iconect_list_users.
type ListUsersInput struct {
	ProjectID string `json:"projectId,omitempty" jsonschema:"restrict the listing to members of one project"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetUserInput holds parameters for iconect_get_user.
type GetUserInput struct {
	UserID string `json:"userId" jsonschema:"required,user identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetUserInput) Validate() error {
	return requireID("userId", in.UserID)
}

// UpdateUserInput holds parameters for iconect_update_user.
type UpdateUserInput struct {
	UserID string         `json:"userId" jsonschema:"required,user identifier"`
	Fields map[string]any `json:"fields" jsonschema:"required,user fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateUserInput) Validate() error {
	if err := requireID("userId", in.UserID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

func (s *Service) userCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_users",
			"List platform users, optionally scoped to a project's members.",
			func(ctx context.Context, in ListUsersInput) (any, string, error) {
				q := pageQuery(in.Page, in.PerPage)
				if in.ProjectID != "" {
					q.Set("project_id", in.ProjectID)
				}

				data, err := s.get(ctx, "/v1/users", q)
				if err != nil {
					return nil, "", err
				}

				return data, "users listed", nil
			}),
		command.New("iconect_get_user",
			"Fetch a single user by identifier.",
			func(ctx context.Context, in GetUserInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("users", in.UserID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("user %s retrieved", in.UserID), nil
			}),
		command.New("iconect_get_current_user",
			"Fetch the profile of the authenticated user.",
			func(ctx context.Context, _ struct{}) (any, string, error) {
				data, err := s.get(ctx, "/v1/users/me", nil)
				if err != nil {
					return nil, "", err
				}

				return data, "current user retrieved", nil
			}),
		command.New("iconect_update_user",
			"Update fields on an existing user.",
			func(ctx context.Context, in UpdateUserInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("users", in.UserID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("user %s updated", in.UserID), nil
			}),
	}
}
