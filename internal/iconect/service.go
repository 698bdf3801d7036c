// Package iconect implements the platform capability commands. Each module
// is a narrow, stateless translator: typed command input in, one REST call
// through the pipeline, upstream JSON passed back out untouched. Workflow
// logic, caching and idempotence stay on the platform side.
package iconect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dizzident/iconect-mcp/internal/client"
	"github.com/Dizzident/iconect-mcp/internal/command"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// Service bundles the pipeline the capability commands call through.
type Service struct {
	pipeline *client.Pipeline
}

// NewService creates the capability service over the given pipeline.
func NewService(p *client.Pipeline) *Service {
	return &Service{pipeline: p}
}

// Commands returns every capability command, grouped by module in the
// order the tool listing should advertise them.
func (s *Service) Commands() [][]command.Descriptor {
	return [][]command.Descriptor{
		s.projectCommands(),
		s.clientCommands(),
		s.userCommands(),
		s.fileCommands(),
		s.recordCommands(),
		s.folderCommands(),
		s.fieldCommands(),
		s.jobCommands(),
		s.panelCommands(),
		s.templateCommands(),
		s.viewCommands(),
		s.searchCommands(),
		s.dashboardCommands(),
		s.themeCommands(),
	}
}

// rawData converts an upstream body to envelope data, passing the JSON
// through untouched. Empty bodies (204 responses) become nil.
func rawData(body []byte) any {
	if len(body) == 0 {
		return nil
	}

	return json.RawMessage(body)
}

// get performs a GET and returns the passthrough data.
func (s *Service) get(ctx context.Context, path string, query url.Values) (any, error) {
	body, err := s.pipeline.Do(ctx, client.Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}

	return rawData(body), nil
}

// post performs a POST with a JSON body and returns the passthrough data.
func (s *Service) post(ctx context.Context, path string, body any) (any, error) {
	respBody, err := s.pipeline.Do(ctx, client.Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	return rawData(respBody), nil
}

// put performs a PUT with a JSON body and returns the passthrough data.
func (s *Service) put(ctx context.Context, path string, body any) (any, error) {
	respBody, err := s.pipeline.Do(ctx, client.Request{Method: http.MethodPut, Path: path, Body: body})
	if err != nil {
		return nil, err
	}

	return rawData(respBody), nil
}

// delete performs a DELETE and returns the passthrough data.
func (s *Service) delete(ctx context.Context, path string) (any, error) {
	respBody, err := s.pipeline.Do(ctx, client.Request{Method: http.MethodDelete, Path: path})
	if err != nil {
		return nil, err
	}

	return rawData(respBody), nil
}

// idPath joins path segments with escaping so an identifier cannot break
// out of its segment.
func idPath(segments ...string) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}

	return b.String()
}

// pageQuery builds the standard pagination query. Zero values are omitted
// so the platform's own defaults apply.
func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	return q
}

// requireID reports a validation error when a required identifier is
// empty or whitespace.
func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return iconerr.Newf(iconerr.CodeValidation, "%s must not be empty", field).WithStatus(400)
	}

	return nil
}

// requireFields reports a validation error when an update carries nothing
// to change.
func requireFields(fields map[string]any) error {
	if len(fields) == 0 {
		return iconerr.New(iconerr.CodeValidation, "fields must not be empty").WithStatus(400)
	}

	return nil
}
