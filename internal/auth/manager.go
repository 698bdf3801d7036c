// Package auth implements the OAuth credential lifecycle against the review
// platform: the password, authorization-code and refresh grants, logout,
// status reporting and authorization-URL construction. Token requests flow
// through the request pipeline so transport behavior lives in one place.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Dizzident/iconect-mcp/internal/client"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
	"github.com/Dizzident/iconect-mcp/internal/token"
)

// Config carries the OAuth client settings for the configured platform.
type Config struct {
	ClientID     string
	ClientSecret string
}

// Manager drives the credential lifecycle. It implements client.Refresher,
// so the pipeline's 401 recovery and the explicit refresh command share one
// code path.
type Manager struct {
	pipeline *client.Pipeline
	store    *token.Store
	cfg      Config
	logger   *slog.Logger

	// refreshGroup deduplicates concurrent refreshes: whoever triggers a
	// refresh while one is in flight waits for that flight's result
	// instead of issuing another exchange.
	refreshGroup singleflight.Group
}

// NewManager creates a Manager over the given pipeline and store.
func NewManager(pipeline *client.Pipeline, store *token.Store, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		pipeline: pipeline,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// tokenResponse is the token endpoint's success shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// PasswordGrant authenticates with a username and password and stores the
// issued credentials.
func (m *Manager) PasswordGrant(ctx context.Context, username, password string) (*token.Credentials, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {m.cfg.ClientID},
		"username":   {username},
		"password":   {password},
	}
	if m.cfg.ClientSecret != "" {
		form.Set("client_secret", m.cfg.ClientSecret)
	}

	creds, err := m.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	m.store.Set(creds)
	m.logger.Info("authenticated with password grant",
		slog.Time("expires_at", creds.ExpiresAt),
		slog.Bool("has_refresh_token", creds.RefreshToken != ""))

	return creds, nil
}

// CodeGrant exchanges an authorization code for credentials and stores
// them. verifier is the PKCE code verifier from the authorization request,
// empty when the flow was started without PKCE.
func (m *Manager) CodeGrant(ctx context.Context, code, redirectURI, verifier string) (*token.Credentials, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {m.cfg.ClientID},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	if verifier != "" {
		form.Set("code_verifier", verifier)
	}
	if m.cfg.ClientSecret != "" {
		form.Set("client_secret", m.cfg.ClientSecret)
	}

	creds, err := m.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	m.store.Set(creds)
	m.logger.Info("authenticated with authorization code grant",
		slog.Time("expires_at", creds.ExpiresAt),
		slog.Bool("has_refresh_token", creds.RefreshToken != ""))

	return creds, nil
}

// EnsureFresh exchanges the stored refresh token for fresh credentials.
// Concurrent callers share a single exchange; late arrivals receive the
// settled result rather than issuing their own.
func (m *Manager) EnsureFresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		// Detached from the individual caller: one canceled request must
		// not fail the flight every waiter shares.
		return nil, m.refresh(context.WithoutCancel(ctx))
	})

	return err
}

// Refresh forces a refresh grant and returns the resulting credentials,
// sharing any exchange already in flight.
func (m *Manager) Refresh(ctx context.Context) (*token.Credentials, error) {
	if err := m.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	creds := m.store.Current()
	if creds == nil {
		return nil, iconerr.New(iconerr.CodeAuthentication, "refresh produced no credentials")
	}

	return creds, nil
}

// refresh performs the refresh grant. On failure the store is cleared: a
// rejected refresh token cannot recover, so the gateway drops back to
// unauthenticated instead of replaying a doomed exchange.
func (m *Manager) refresh(ctx context.Context) error {
	refreshToken := m.store.RefreshToken()
	if refreshToken == "" {
		return iconerr.New(iconerr.CodeAuthentication, "no refresh token available")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {m.cfg.ClientID},
		"refresh_token": {refreshToken},
	}
	if m.cfg.ClientSecret != "" {
		form.Set("client_secret", m.cfg.ClientSecret)
	}

	creds, err := m.requestToken(ctx, form)
	if err != nil {
		m.store.Clear()
		m.logger.Warn("refresh failed, credentials cleared", slog.String("error", err.Error()))

		return err
	}

	// The platform may omit the refresh token on refresh; keep the old one.
	if creds.RefreshToken == "" {
		creds.RefreshToken = refreshToken
	}

	m.store.Set(creds)
	m.logger.Debug("credentials refreshed", slog.Time("expires_at", creds.ExpiresAt))

	return nil
}

// Logout drops the stored credentials. No platform call is made: the
// platform offers no revocation endpoint, so forgetting the tokens is the
// whole operation.
func (m *Manager) Logout() {
	m.store.Clear()
	m.logger.Info("logged out, credentials cleared")
}

// Status describes the stored credential state.
type Status struct {
	Authenticated bool
	TokenType     string
	Scope         string
	ExpiresAt     time.Time
	ExpiresIn     time.Duration
	IsExpired     bool
	HasRefresh    bool
}

// CurrentStatus reports on the stored credentials. IsExpired compares the
// raw expiry with no safety margin; the pipeline's injection decision
// applies token.ExpirySkew instead.
func (m *Manager) CurrentStatus() Status {
	creds := m.store.Current()
	if creds == nil {
		return Status{}
	}

	st := Status{
		Authenticated: true,
		TokenType:     creds.TokenType,
		Scope:         creds.Scope,
		ExpiresAt:     creds.ExpiresAt,
		IsExpired:     creds.Expired(),
		HasRefresh:    creds.RefreshToken != "",
	}

	if d := time.Until(creds.ExpiresAt); !creds.ExpiresAt.IsZero() && d > 0 {
		st.ExpiresIn = d
	}

	return st
}

// AuthorizationURL constructs the platform authorization URL for the code
// flow. Pure construction: no network call, no state change. The challenge
// method is pinned to S256 whenever a challenge is supplied.
func (m *Manager) AuthorizationURL(redirectURI, challenge, state, scope string) (string, error) {
	authURL, err := url.Parse(m.pipeline.BaseURL() + "/oauth/authorize")
	if err != nil {
		return "", iconerr.Wrap(iconerr.CodeConfiguration, err, "invalid base URL")
	}

	query := authURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", m.cfg.ClientID)
	query.Set("redirect_uri", redirectURI)

	if state != "" {
		query.Set("state", state)
	}

	if scope != "" {
		query.Set("scope", scope)
	}

	if challenge != "" {
		query.Set("code_challenge", challenge)
		query.Set("code_challenge_method", "S256")
	}

	authURL.RawQuery = query.Encode()

	return authURL.String(), nil
}

// requestToken posts a grant to the token endpoint. Grant rejections are
// authentication failures regardless of the HTTP status the platform
// chose; transport failures pass through untouched.
func (m *Manager) requestToken(ctx context.Context, form url.Values) (*token.Credentials, error) {
	var resp tokenResponse

	err := m.pipeline.DoJSON(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/oauth/token",
		Form:   form,
		NoAuth: true,
	}, &resp)
	if err != nil {
		if iconerr.HasCode(err, iconerr.CodeTransport) {
			return nil, err
		}

		ge := iconerr.From(err)

		return nil, &iconerr.Error{
			Code:       iconerr.CodeAuthentication,
			Message:    ge.Message,
			StatusCode: ge.StatusCode,
			Details:    ge.Details,
			Err:        err,
		}
	}

	if resp.AccessToken == "" {
		return nil, iconerr.New(iconerr.CodeAuthentication, "token endpoint returned no access token")
	}

	creds := &token.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		Scope:        resp.Scope,
	}
	if resp.ExpiresIn > 0 {
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return creds, nil
}
