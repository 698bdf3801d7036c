package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/Dizzident/iconect-mcp/internal/auth"
	"github.com/Dizzident/iconect-mcp/internal/command"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// PasswordAuthInput holds parameters for iconect_auth_password.
type PasswordAuthInput struct {
	Username string `json:"username" jsonschema:"required,platform username"`
	Password string `json:"password" jsonschema:"required,platform password"`
}

// Validate checks semantic constraints the schema cannot express.
func (in PasswordAuthInput) Validate() error {
	if in.Username == "" {
		return iconerr.New(iconerr.CodeValidation, "username must not be empty").WithStatus(400)
	}

	if in.Password == "" {
		return iconerr.New(iconerr.CodeValidation, "password must not be empty").WithStatus(400)
	}

	return nil
}

// CodeAuthInput holds parameters for iconect_auth_code.
type CodeAuthInput struct {
	Code         string `json:"code" jsonschema:"required,authorization code returned to the redirect URI"`
	RedirectURI  string `json:"redirectUri" jsonschema:"required,redirect URI the code was issued for"`
	CodeVerifier string `json:"codeVerifier,omitempty" jsonschema:"PKCE verifier matching the challenge in the authorization request"`
}

// Validate checks semantic constraints the schema cannot express.
func (in CodeAuthInput) Validate() error {
	if in.Code == "" {
		return iconerr.New(iconerr.CodeValidation, "code must not be empty").WithStatus(400)
	}

	if in.RedirectURI == "" {
		return iconerr.New(iconerr.CodeValidation, "redirectUri must not be empty").WithStatus(400)
	}

	return nil
}

// AuthURLInput holds parameters for iconect_auth_url.
type AuthURLInput struct {
	RedirectURI   string `json:"redirectUri" jsonschema:"required,URI the platform redirects to with the code"`
	Scope         string `json:"scope,omitempty" jsonschema:"requested scopes, space-separated"`
	State         string `json:"state,omitempty" jsonschema:"CSRF state value, generated when omitted"`
	CodeChallenge string `json:"codeChallenge,omitempty" jsonschema:"externally generated S256 PKCE challenge; when omitted the gateway generates a PKCE pair and returns the verifier"`
}

// Validate checks semantic constraints the schema cannot express.
func (in AuthURLInput) Validate() error {
	if in.RedirectURI == "" {
		return iconerr.New(iconerr.CodeValidation, "redirectUri must not be empty").WithStatus(400)
	}

	return nil
}

// AuthURLData is returned by iconect_auth_url. CodeVerifier is set only
// when the gateway generated the PKCE pair itself; the caller must keep it
// for the code exchange.
type AuthURLData struct {
	URL           string `json:"url"`
	State         string `json:"state"`
	CodeChallenge string `json:"codeChallenge,omitempty"`
	CodeVerifier  string `json:"codeVerifier,omitempty"`
}

// AuthStatusData is the JSON view of the stored credential state.
type AuthStatusData struct {
	Authenticated    bool   `json:"authenticated"`
	TokenType        string `json:"tokenType,omitempty"`
	Scope            string `json:"scope,omitempty"`
	ExpiresAt        string `json:"expiresAt,omitempty"`
	ExpiresInSeconds int64  `json:"expiresInSeconds,omitempty"`
	IsExpired        bool   `json:"isExpired,omitempty"`
	HasRefreshToken  bool   `json:"hasRefreshToken,omitempty"`
}

// statusData converts manager status to its envelope shape. Tokens are
// never included: the agent sees expiry facts, not credentials.
func statusData(st auth.Status) AuthStatusData {
	data := AuthStatusData{
		Authenticated:   st.Authenticated,
		TokenType:       st.TokenType,
		Scope:           st.Scope,
		IsExpired:       st.IsExpired,
		HasRefreshToken: st.HasRefresh,
	}

	if !st.ExpiresAt.IsZero() {
		data.ExpiresAt = st.ExpiresAt.UTC().Format(time.RFC3339)
	}

	if st.ExpiresIn > 0 {
		data.ExpiresInSeconds = int64(st.ExpiresIn.Seconds())
	}

	return data
}

// authCommands builds the credential lifecycle commands over a session's
// manager.
func authCommands(manager *auth.Manager) []command.Descriptor {
	return []command.Descriptor{
		command.New("iconect_auth_password",
			"Authenticate with a platform username and password.",
			func(ctx context.Context, in PasswordAuthInput) (any, string, error) {
				if _, err := manager.PasswordGrant(ctx, in.Username, in.Password); err != nil {
					return nil, "", err
				}

				return statusData(manager.CurrentStatus()), fmt.Sprintf("authenticated as %s", in.Username), nil
			}),
		command.New("iconect_auth_code",
			"Complete the authorization code flow by exchanging the code for credentials.",
			func(ctx context.Context, in CodeAuthInput) (any, string, error) {
				if _, err := manager.CodeGrant(ctx, in.Code, in.RedirectURI, in.CodeVerifier); err != nil {
					return nil, "", err
				}

				return statusData(manager.CurrentStatus()), "authorization code exchanged", nil
			}),
		command.New("iconect_auth_url",
			"Build the browser authorization URL for the code flow. Generates PKCE and state values unless supplied.",
			func(_ context.Context, in AuthURLInput) (any, string, error) {
				data := AuthURLData{State: in.State, CodeChallenge: in.CodeChallenge}

				if data.CodeChallenge == "" {
					pkce, err := auth.GeneratePKCE()
					if err != nil {
						return nil, "", iconerr.Wrap(iconerr.CodeInternal, err, "generating PKCE pair")
					}

					data.CodeChallenge = pkce.Challenge
					data.CodeVerifier = pkce.Verifier
				}

				if data.State == "" {
					state, err := auth.GenerateState()
					if err != nil {
						return nil, "", iconerr.Wrap(iconerr.CodeInternal, err, "generating state")
					}

					data.State = state
				}

				authURL, err := manager.AuthorizationURL(in.RedirectURI, data.CodeChallenge, data.State, in.Scope)
				if err != nil {
					return nil, "", err
				}

				data.URL = authURL

				return data, "authorization URL built", nil
			}),
		command.New("iconect_auth_refresh",
			"Exchange the stored refresh token for fresh credentials.",
			func(ctx context.Context, _ struct{}) (any, string, error) {
				if _, err := manager.Refresh(ctx); err != nil {
					return nil, "", err
				}

				return statusData(manager.CurrentStatus()), "credentials refreshed", nil
			}),
		command.New("iconect_auth_status",
			"Report the current authentication state without touching the platform.",
			func(_ context.Context, _ struct{}) (any, string, error) {
				st := manager.CurrentStatus()

				message := "not authenticated"
				if st.Authenticated {
					message = "authenticated"
					if st.IsExpired {
						message = "authenticated, token expired"
					}
				}

				return statusData(st), message, nil
			}),
		command.New("iconect_logout",
			"Drop the stored credentials. No platform call is made.",
			func(_ context.Context, _ struct{}) (any, string, error) {
				manager.Logout()

				return statusData(manager.CurrentStatus()), "logged out", nil
			}),
	}
}
