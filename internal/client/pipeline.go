// Package client implements the token-aware request pipeline between the
// gateway and the review platform REST API. Every upstream call flows
// through one Pipeline instance, which owns bearer injection, the one-shot
// 401 refresh-and-replay, and transient retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
	"github.com/Dizzident/iconect-mcp/internal/token"
)

// TransientError wraps an error that is likely temporary and safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or any error in its chain) is a
// TransientError, meaning the caller may retry after a delay.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// defaultTimeout is applied when no custom http.Client is provided.
	defaultTimeout = 30 * time.Second

	// defaultRetryDelay is used when the configuration supplies none.
	defaultRetryDelay = time.Second

	// maxResponseBytes caps response body reads. Platform responses are
	// paged JSON; bulk content moves through signed URLs, not this path.
	maxResponseBytes = 2 * 1024 * 1024
)

// Refresher exchanges the stored refresh token for fresh credentials.
// The auth lifecycle manager implements it; the pipeline only knows the seam.
type Refresher interface {
	EnsureFresh(ctx context.Context) error
}

// Request describes one platform call.
type Request struct {
	Method string
	Path   string // versioned path, e.g. "/v1/projects"
	Query  url.Values
	Body   any        // marshalled as JSON when non-nil
	Form   url.Values // form-encoded body; used by the token endpoint

	// NoAuth skips bearer injection and 401 recovery. The token endpoint
	// itself is called this way: a rejected grant must surface directly
	// instead of triggering another refresh.
	NoAuth bool

	// NoRetry disables the transient retry loop for this request.
	NoRetry bool
}

// Options configures a Pipeline.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      *token.Store
	Logger     *slog.Logger
	Timeout    time.Duration // per-request timeout when HTTPClient is nil
	MaxRetries int
	RetryDelay time.Duration
}

// Pipeline sends requests to the platform with the stored bearer token.
type Pipeline struct {
	httpClient *http.Client
	baseURL    string
	store      *token.Store
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration

	// refresher is installed after construction because the auth manager
	// sends its own token requests through this pipeline.
	refresher Refresher
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents bearer tokens from
// leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// New creates a Pipeline. If opts.HTTPClient is nil, a client with the
// configured timeout (default 30s) and same-host redirect policy is created.
func New(opts Options) *Pipeline {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{
			Timeout:       timeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Pipeline{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		store:      opts.Store,
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// SetRefresher installs the credential refresher used for 401 recovery.
// Must be called before the pipeline serves concurrent requests.
func (p *Pipeline) SetRefresher(r Refresher) {
	p.refresher = r
}

// BaseURL returns the platform base URL the pipeline was built with.
func (p *Pipeline) BaseURL() string {
	return p.baseURL
}

// Do performs the request and returns the raw response body.
//
// Authenticated requests that come back 401 trigger one refresh through the
// installed Refresher followed by one replay; a second 401 surfaces as an
// authentication error. Independent of that, transient failures (network
// errors, 429, 5xx) are retried up to MaxRetries times with a fixed delay.
func (p *Pipeline) Do(ctx context.Context, req Request) ([]byte, error) {
	retries := p.maxRetries
	if req.NoRetry {
		retries = 0
	}

	requestID := uuid.NewString()
	logger := p.logger.With(
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.String("request_id", requestID),
	)

	replayed := false
	attempt := 0

	for {
		status, body, err := p.send(ctx, req, requestID)

		switch {
		case err != nil:
			if IsTransient(err) && attempt < retries {
				attempt++
				logger.Warn("request failed, retrying",
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()))

				if werr := p.wait(ctx); werr != nil {
					return nil, werr
				}

				continue
			}

			return nil, transportError(err)

		case status == http.StatusUnauthorized && !req.NoAuth:
			if replayed || p.refresher == nil || p.store.RefreshToken() == "" {
				return nil, authError(body)
			}

			replayed = true
			logger.Debug("received 401, refreshing credentials")

			if rerr := p.refresher.EnsureFresh(ctx); rerr != nil {
				return nil, fmt.Errorf("refreshing credentials: %w", rerr)
			}

			continue

		case isTransientStatus(status):
			if attempt < retries {
				attempt++
				logger.Warn("upstream returned retryable status",
					slog.Int("status", status),
					slog.Int("attempt", attempt))

				if werr := p.wait(ctx); werr != nil {
					return nil, werr
				}

				continue
			}

			return nil, upstreamError(status, body)

		default:
			return p.finish(logger, status, body)
		}
	}
}

// DoJSON performs the request and decodes the response body into result.
// A nil result or empty body skips decoding.
func (p *Pipeline) DoJSON(ctx context.Context, req Request, result any) error {
	body, err := p.Do(ctx, req)
	if err != nil {
		return err
	}

	if result == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return iconerr.Wrap(iconerr.CodeUpstream, err, "decoding platform response")
	}

	return nil
}

// send performs a single HTTP exchange. Network-level failures come back
// wrapped in TransientError; response statuses are returned for the caller
// to classify.
func (p *Pipeline) send(ctx context.Context, req Request, requestID string) (int, []byte, error) {
	u, err := url.Parse(p.baseURL + req.Path)
	if err != nil {
		return 0, nil, iconerr.Wrap(iconerr.CodeInternal, err, "building request URL")
	}

	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return 0, nil, iconerr.Wrap(iconerr.CodeInternal, err, "marshalling request body")
		}

		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return 0, nil, iconerr.Wrap(iconerr.CodeInternal, err, "creating request")
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if !req.NoAuth {
		if creds := p.store.Current(); creds.ValidFor(token.ExpirySkew) {
			httpReq.Header.Set("Authorization", "Bearer "+creds.AccessToken)
		}
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts, connection refusals and DNS failures are transient
		// by nature.
		return 0, nil, &TransientError{Err: fmt.Errorf("sending request to %s: %w", req.Path, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, &TransientError{Err: fmt.Errorf("reading response from %s: %w", req.Path, err)}
	}

	return resp.StatusCode, respBody, nil
}

// finish classifies a settled response.
func (p *Pipeline) finish(logger *slog.Logger, status int, body []byte) ([]byte, error) {
	if status >= 200 && status < 300 {
		logger.Debug("request completed", slog.Int("status", status))
		return body, nil
	}

	switch status {
	case http.StatusBadRequest:
		return nil, validationError(body)
	case http.StatusUnauthorized:
		// Only reachable for NoAuth requests; authenticated 401s are
		// handled by the replay branch in Do.
		return nil, authError(body)
	default:
		return nil, upstreamError(status, body)
	}
}

// wait sleeps for the configured retry delay, aborting early when the
// request context is canceled.
func (p *Pipeline) wait(ctx context.Context) error {
	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return iconerr.Wrap(iconerr.CodeTransport, ctx.Err(), "request canceled during retry wait")
	case <-timer.C:
		return nil
	}
}

// isTransientStatus returns true for HTTP status codes that indicate a
// temporary server-side problem worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	return false
}
