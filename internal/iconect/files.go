package iconect

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// ListFilesInput holds parameters for iconect_list_files.
type ListFilesInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in ListFilesInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// GetFileInput holds parameters for iconect_get_file.
type GetFileInput struct {
	FileID string `json:"fileId" jsonschema:"required,file identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetFileInput) Validate() error {
	return requireID("fileId", in.FileID)
}

// UploadFileInput holds parameters for iconect_upload_file.
type UploadFileInput struct {
	ProjectID   string         `json:"projectId" jsonschema:"required,project to attach the file to"`
	Name        string         `json:"name" jsonschema:"required,file name including extension"`
	Content     string         `json:"content" jsonschema:"required,base64-encoded file content"`
	ContentType string         `json:"contentType,omitempty" jsonschema:"MIME type, defaults to application/octet-stream on the platform"`
	Fields      map[string]any `json:"fields,omitempty" jsonschema:"additional file metadata passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UploadFileInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	if err := requireID("name", in.Name); err != nil {
		return err
	}

	if in.Content == "" {
		return iconerr.New(iconerr.CodeValidation, "content must not be empty").WithStatus(400)
	}

	if _, err := base64.StdEncoding.DecodeString(in.Content); err != nil {
		return iconerr.New(iconerr.CodeValidation, "content must be valid base64").WithStatus(400)
	}

	return nil
}

// FileDownloadURLInput holds parameters for iconect_get_file_download_url.
type FileDownloadURLInput struct {
	FileID string `json:"fileId" jsonschema:"required,file identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in FileDownloadURLInput) Validate() error {
	return requireID("fileId", in.FileID)
}

// DeleteFileInput holds parameters for iconect_delete_file.
type DeleteFileInput struct {
	FileID string `json:"fileId" jsonschema:"required,file identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteFileInput) Validate() error {
	return requireID("fileId", in.FileID)
}

func (s *Service) fileCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_files",
			"List files attached to a project.",
			func(ctx context.Context, in ListFilesInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "files"), pageQuery(in.Page, in.PerPage))
				if err != nil {
					return nil, "", err
				}

				return data, "files listed", nil
			}),
		command.New("iconect_get_file",
			"Fetch file metadata by identifier.",
			func(ctx context.Context, in GetFileInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("files", in.FileID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("file %s retrieved", in.FileID), nil
			}),
		command.New("iconect_upload_file",
			"Upload a file to a project. Content is base64-encoded in the request body.",
			func(ctx context.Context, in UploadFileInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["name"] = in.Name
				body["content"] = in.Content
				if in.ContentType != "" {
					body["content_type"] = in.ContentType
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "files"), body)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("file %s uploaded", in.Name), nil
			}),
		command.New("iconect_get_file_download_url",
			"Fetch a short-lived download URL for a file.",
			func(ctx context.Context, in FileDownloadURLInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("files", in.FileID, "download-url"), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("download URL for file %s retrieved", in.FileID), nil
			}),
		command.New("iconect_delete_file",
			"Delete a file from its project.",
			func(ctx context.Context, in DeleteFileInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("files", in.FileID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("file %s deleted", in.FileID), nil
			}),
	}
}
