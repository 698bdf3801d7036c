package iconect

import (
	"context"
	"fmt"

	"github.com/Dizzident/iconect-mcp/internal/command"
)

// ListJobsInput holds parameters for iconect_list_jobs.
type ListJobsInput struct {
	ProjectID string `json:"projectId,omitempty" jsonschema:"restrict the listing to one project's jobs"`
	Status    string `json:"status,omitempty" jsonschema:"filter by job status, e.g. queued or running or completed or failed"`
	Page      int    `json:"page,omitempty" jsonschema:"page number, 1-based"`
	PerPage   int    `json:"perPage,omitempty" jsonschema:"results per page"`
}

// GetJobInput holds parameters for iconect_get_job.
type GetJobInput struct {
	JobID string `json:"jobId" jsonschema:"required,job identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in GetJobInput) Validate() error {
	return requireID("jobId", in.JobID)
}

// CreateImportJobInput holds parameters for iconect_create_import_job.
type CreateImportJobInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project to import into"`
	FileID    string         `json:"fileId" jsonschema:"required,uploaded file holding the import data"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"additional import options passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateImportJobInput) Validate() error {
	if err := requireID("projectId", in.ProjectID); err != nil {
		return err
	}

	return requireID("fileId", in.FileID)
}

// CreateExportJobInput holds parameters for iconect_create_export_job.
type CreateExportJobInput struct {
	ProjectID string         `json:"projectId" jsonschema:"required,project to export from"`
	Query     string         `json:"query,omitempty" jsonschema:"restrict the export to records matching this search expression"`
	Format    string         `json:"format,omitempty" jsonschema:"export format, platform default when omitted"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema:"additional export options passed through to the platform"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CreateExportJobInput) Validate() error {
	return requireID("projectId", in.ProjectID)
}

// CancelJobInput holds parameters for iconect_cancel_job.
type CancelJobInput struct {
	JobID string `json:"jobId" jsonschema:"required,job identifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CancelJobInput) Validate() error {
	return requireID("jobId", in.JobID)
}

func (s *Service) jobCommands() []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_list_jobs",
			"List background jobs, optionally filtered by project or status.",
			func(ctx context.Context, in ListJobsInput) (any, string, error) {
				q := pageQuery(in.Page, in.PerPage)
				if in.ProjectID != "" {
					q.Set("project_id", in.ProjectID)
				}
				if in.Status != "" {
					q.Set("status", in.Status)
				}

				data, err := s.get(ctx, "/v1/jobs", q)
				if err != nil {
					return nil, "", err
				}

				return data, "jobs listed", nil
			}),
		command.New("iconect_get_job",
			"Fetch a single job with its current status and progress.",
			func(ctx context.Context, in GetJobInput) (any, string, error) {
				data, err := s.get(ctx, "/v1"+idPath("jobs", in.JobID), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("job %s retrieved", in.JobID), nil
			}),
		command.New("iconect_create_import_job",
			"Start an import job that loads records from an uploaded file.",
			func(ctx context.Context, in CreateImportJobInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["project_id"] = in.ProjectID
				body["file_id"] = in.FileID

				data, err := s.post(ctx, "/v1/jobs/imports", body)
				if err != nil {
					return nil, "", err
				}

				return data, "import job created", nil
			}),
		command.New("iconect_create_export_job",
			"Start an export job that produces a downloadable dataset.",
			func(ctx context.Context, in CreateExportJobInput) (any, string, error) {
				body := in.Fields
				if body == nil {
					body = map[string]any{}
				}
				body["project_id"] = in.ProjectID
				if in.Query != "" {
					body["query"] = in.Query
				}
				if in.Format != "" {
					body["format"] = in.Format
				}

				data, err := s.post(ctx, "/v1/jobs/exports", body)
				if err != nil {
					return nil, "", err
				}

				return data, "export job created", nil
			}),
		command.New("iconect_cancel_job",
			"Cancel a queued or running job.",
			func(ctx context.Context, in CancelJobInput) (any, string, error) {
				data, err := s.post(ctx, "/v1"+idPath("jobs", in.JobID, "cancel"), nil)
				if err != nil {
					return nil, "", err
				}

				return data, fmt.Sprintf("job %s cancelled", in.JobID), nil
			}),
	}
}
