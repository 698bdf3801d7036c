package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListFoldersInput holds parameters for iconect_list_folders.
type ListFoldersInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	ParentID  string `json:"parentId,omitempty" jsonschema:"list only children of this folder"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListFoldersInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetFolderInput holds parameters for iconect_get_folder.
type GetFolderInput struct {
	FolderID string `json:"folderId" jsonschema:"required,folder identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetFolderInput) Validate() error {
	return requireID("folderId", in.FolderID)
}

// CreateFolderInput holds parameters for iconect_create_folder.
type CreateFolderInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Name      string         `json:"name" jsonschema:"required,folder display name"`
	ParentID  string         `json:"parentId,omitempty" jsonschema:"parent folder, root of the project when omitted"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"additional folder fields passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateFolderInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("name", in.Name)
}

// UpdateFolderInput holds parameters for iconect_update_folder.
type UpdateFolderInput struct {
	FolderID string         `json:"folderId" jsonschema:"required,folder identifier"`
	Fields   map[string]any `json:"fields" jsonschema:"required,folder fields to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateFolderInput) Validate() error {
	if err := requireID("folderId", in.FolderID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteFolderInput holds parameters for iconect_delete_folder.
type DeleteFolderInput struct {
	FolderID string `json:"folderId" jsonschema:"required,folder identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteFolderInput) Validate() error {
	return requireID("folderId", in.FolderID)
}

func (s *Service) folderCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_folders",
			"List folders in a project, optionally under one parent.",
			func(ctx context.Context, in ListFoldersInput) (any, string, error) {
				q := pageQuery(in.Page, in.PerPage)
				if in.ParentID != "" {
					q.Set("parent_id", in.ParentID)
				}

				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "folders"), q)
				if err != nil {
					return nil, "", err
				}

				return data, "folders listed", nil
			}),
		command.New("iconect_get_folder",
			"Fetch a single folder by identifier.",
			func(ctx context.Context, in GetFolderInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("folders", in.FolderID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("folder %s retrieved", in.FolderID), nil
			}),
		command.New("iconect_create_folder",
			"Create a folder in a project.",
			func(ctx context.Context, in CreateFolderInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name
				if in.ParentID != "" {
					body["parent_id"] = in.ParentID
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "folders"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("folder %s created", in.Name), nil
			}),
		command.New("iconect_update_folder",
			"Update fields on an existing folder.",
			func(ctx context.Context, in UpdateFolderInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("folders", in.FolderID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("folder %s updated", in.FolderID), nil
			}),
		command.New("iconect_delete_folder",
			"Delete a folder.",
			func(ctx context.Context, in DeleteFolderInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("folders", in.FolderID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("folder %s deleted", in.FolderID), nil
			}),
	}
}
