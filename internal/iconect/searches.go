package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// RunSearchInput holds parameters for iconect_run_search.
type RunSearchInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project to search in"`
	SearchID  string `json:"searchId,omitempty" jsonschema:"saved search to run, mutually exclusive with query"`
	Query     string `json:"query,omitempty" jsonschema:"ad-hoc search expression, mutually exclusive with searchId"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in RunSearchInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	if in.SearchID == "" && in.Query == "" {
		return iconerr.New(iconerr.CodeValidation, "either searchId or query is required").WithStatus(400)
	}

	if in.SearchID != "" && in.Query != "" {
		return iconerr.New(iconerr.CodeValidation, "searchId and query are mutually exclusive").WithStatus(400)
	}

	return nil
}

// SaveSearchInput holds parameters for iconect_save_search.
type SaveSearchInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Name      string `json:"name" jsonschema:"required,saved search display name"`
	Query     string `json:"query" jsonschema:"required,search expression to save"`
	Shared    bool   `json:"shared,omitempty" jsonschema:"make the search visible to all project members"`
}

// Validate checks semantic constraints the schema cannot express.
func (in SaveSearchInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	if err := requireID("name", in.Name); err != nil {
		return err
	}

	if in.Query == "" {
		return iconerr.New(iconerr.CodeValidation, "query must not be empty").WithStatus(400)
	}

	return nil
}

// ListSavedSearchesInput holds parameters for iconect_list_saved_searches.
type ListSavedSearchesInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListSavedSearchesInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// DeleteSavedSearchInput holds parameters for iconect_delete_saved_search.
type DeleteSavedSearchInput struct {
	SearchID string `json:"searchId" jsonschema:"required,saved search identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteSavedSearchInput) Validate() error {
	return requireID("searchId", in.SearchID)
}

func (s *Service) searchCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_run_search",
			"Run a saved search or an ad-hoc query against a project.",
			func(ctx context.Context, in RunSearchInput) (any, string, error) {
				body := map[string]any{}
				if in.SearchID != "" {
					body["search_id"] = in.SearchID
				}
				if in.Query != "" {
					body["query"] = in.Query
				}
				if in.Page > 0 {
					body["page"] = in.Page
				}
				if in.PerPage > 0 {
					body["per_page"] = in.PerPage
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "searches", "run"), body)
				if err != nil {
					return nil, "", err
				}

				return data, "search executed", nil
			}),
		command.New("iconect_save_search",
			"Save a search expression for reuse in a project.",
			func(ctx context.Context, in SaveSearchInput) (any, string, error) {
				body := map[string]any{
					"name":  in.Name,
					"query": in.Query,
				}
				if in.Shared {
					body["shared"] = true
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "searches"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("search %s saved", in.Name), nil
			}),
		command.New("iconect_list_saved_searches",
			"List saved searches in a project.",
			func(ctx context.Context, in ListSavedSearchesInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "searches"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "saved searches listed", nil
			}),
		command.New("iconect_delete_saved_search",
			"Delete a saved search.",
			func(ctx context.Context, in DeleteSavedSearchInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("searches", in.SearchID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("saved search %s deleted", in.SearchID), nil
			}),
	}
}
