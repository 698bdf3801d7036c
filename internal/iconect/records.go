package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// SearchRecordsInput holds parameters for iconect_search_records.
type SearchRecordsInput struct {
	ProjectID string   `json:"projectId" jsonschema:"required,project to search in"`
	Query     string   `json:"query" jsonschema:"required,search expression in platform query syntax"`
	Fields    []string `json:"fields,omitempty" jsonschema:"field names to include in each hit, all fields when omitted"`
	Sort      string   `json:"sort,omitempty" jsonschema:"sort expression, e.g. date desc"`
	Page      int      `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int      `json:"perPage,omitempty" jsonschema:"results per page"`
}

// Validate checks semantic constraints the schema cannot express.
func (in SearchRecordsInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	if in.Query == "" {
		return iconerr.New(iconerr.CodeValidation, "query must not be empty").WithStatus(400)
	}

	return nil
}

// GetRecordInput holds parameters for iconect_get_record.
type GetRecordInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	RecordID  string `json:"recordId" jsonschema:"required,record identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetRecordInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("recordId", in.RecordID)
}

// CreateRecordInput holds parameters for iconect_create_record.
type CreateRecordInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	Fields    map[string]any `json:"fields" jsonschema:"required,record field values keyed by field name"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateRecordInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// UpdateRecordInput holds parameters for iconect_update_record.
type UpdateRecordInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project identifier"`
	RecordID  string         `json:"recordId" jsonschema:"required,record identifier"`
	Fields    map[string]any `json:"fields" jsonschema:"required,record field values to update"`
}

// Validate checks semantic constraints the schema cannot express.
func (in UpdateRecordInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	if err := requireID("recordId", in.RecordID); err != nil {
		return err
	}

	return requireFields(in.Fields)
}

// DeleteRecordInput holds parameters for iconect_delete_record.
type DeleteRecordInput struct {
	ProjectID string `json:"projectId" jsonschema:"required,project identifier"`
	RecordID  string `json:"recordId" jsonschema:"required,record identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in DeleteRecordInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("recordId", in.RecordID)
}

func (s *Service) recordCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_search_records",
			"Search records in a project using the platform query syntax.",
			func(ctx context.Context, in SearchRecordsInput) (any, string, error) {
				body := map[string]any{"query": in.Query}
				if len(in.Fields) > 0 {
					body["fields"] = in.Fields
				}
				if in.Sort != "" {
					body["sort"] = in.Sort
				}
				if in.Page > 0 {
					body["page"] = in.Page
				}
				if in.PerPage > 0 {
					body["per_page"] = in.PerPage
				}

				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "records", "search"), body)
				if err != nil {
					return nil, "", err
				}

				return data, "records searched", nil
			}),
		command.New("iconect_get_record",
			"Fetch a single record from a project.",
			func(ctx context.Context, in GetRecordInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("projects", in.ProjectID, "records", in.RecordID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("record %s retrieved", in.RecordID), nil
			}),
		command.New("iconect_create_record",
			"Create a record in a project.",
			func(ctx context.Context, in CreateRecordInput) (any, string, error) {
				data, err := s.post(ctx, "/v1"+idPath("projects", in.ProjectID, "records"), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, "record created", nil
			}),
		command.New("iconect_update_record",
			"Update field values on an existing record.",
			func(ctx context.Context, in UpdateRecordInput) (any, string, error) {
				data, err := s.put(ctx, "/v1"+idPath("projects", in.ProjectID, "records", in.RecordID), in.Fields)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("record %s updated", in.RecordID), nil
			}),
		command.New("iconect_delete_record",
			"Delete a record from a project.",
			func(ctx context.Context, in DeleteRecordInput) (any, string, error) {
				data, err := s.delete(ctx, "/v1"+idPath("projects", in.ProjectID, "records", in.RecordID))
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("record %s deleted", in.RecordID), nil
			}),
	}
}
