package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
	iconerr "github.com/Dizzident/iconect-mcp/internal/errors"
)

// --- test helpers ---

func newTestGateway() *Gateway {
	return New(config.Settings{}, nil)
}

func dispatch(t *testing.T, g *Gateway, name, args string) command.Envelope {
	t.Helper()

	return g.Dispatch(context.Background(), name, json.RawMessage(args))
}

func configureGateway(t *testing.T, g *Gateway, baseURL string) command.Envelope {
	t.Helper()

	env := dispatch(t, g, CommandConfigure,
		fmt.Sprintf(`{"baseUrl":%q,"clientId":"c1"}`, baseURL))
	require.True(t, env.Success, "configure failed: %+v", env.Error)

	return env
}

// writeToken answers a token request with the given access token.
func writeToken(w http.ResponseWriter, access string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":3600,"refresh_token":"r1"}`, access)
}

// newFakePlatform serves a token endpoint and a projects listing. The
// listing accepts only the most recently issued access token, so a
// stale-token call comes back 401.
func newFakePlatform(t *testing.T) (baseURL string, tokenCalls, projectCalls *int) {
	t.Helper()

	tokenCalls = new(int)
	projectCalls = new(int)
	current := ""

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		*tokenCalls++
		current = fmt.Sprintf("tok-%d", *tokenCalls)
		writeToken(w, current)
	})
	mux.HandleFunc("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		*projectCalls++
		if r.Header.Get("Authorization") != "Bearer "+current {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL, tokenCalls, projectCalls
}

func errorCode(t *testing.T, env command.Envelope) string {
	t.Helper()
	require.False(t, env.Success)
	require.NotNil(t, env.Error)

	return env.Error.Code
}

// --- capability gating ---

func TestCommands_OnlyConfigureBeforeConfiguration(t *testing.T) {
	g := newTestGateway()

	cmds := g.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, CommandConfigure, cmds[0].Name)
	assert.False(t, g.Configured())
}

func TestCommands_FullSetAfterConfiguration(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://review.example.com")

	// configure + 6 auth commands + 61 capability commands
	assert.Len(t, g.Commands(), 68)
	assert.True(t, g.Configured())
}

func TestDispatch_NotConfiguredGate(t *testing.T) {
	g := newTestGateway()

	env := dispatch(t, g, "iconect_list_projects", `{}`)
	assert.Equal(t, string(iconerr.CodeNotConfigured), errorCode(t, env))
	assert.Nil(t, env.Data)
}

func TestDispatch_UnknownToolAfterConfiguration(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://review.example.com")

	env := dispatch(t, g, "iconect_does_not_exist", `{}`)
	assert.Equal(t, string(iconerr.CodeUnknownTool), errorCode(t, env))
}

// --- configure ---

func TestConfigure_EchoesNonSecretSettings(t *testing.T) {
	g := newTestGateway()

	env := dispatch(t, g, CommandConfigure,
		`{"baseUrl":"https://api.test.com/","clientId":"c1","clientSecret":"s1","timeoutMs":5000}`)
	require.True(t, env.Success)

	data, ok := env.Data.(ConfigureData)
	require.True(t, ok)
	assert.Equal(t, "https://api.test.com", data.BaseURL, "trailing slash should be trimmed")
	assert.Equal(t, "c1", data.ClientID)
	assert.Equal(t, 5000, data.TimeoutMs)

	// The secret must never appear in the envelope.
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s1")
}

func TestConfigure_AppliesDefaults(t *testing.T) {
	g := newTestGateway()

	env := configureGateway(t, g, "https://review.example.com")
	data := env.Data.(ConfigureData)
	assert.Equal(t, config.DefaultTimeoutMs, data.TimeoutMs)

	sess := g.Session()
	require.NotNil(t, sess)
	assert.Equal(t, config.DefaultMaxRetries, sess.Settings.MaxRetries)
	assert.Equal(t, config.DefaultRetryDelayMs, sess.Settings.RetryDelayMs)
}

func TestConfigure_MergesOperatorDefaults(t *testing.T) {
	g := New(config.Settings{ClientSecret: "operator-secret", TimeoutMs: 7000}, nil)

	configureGateway(t, g, "https://review.example.com")

	sess := g.Session()
	require.NotNil(t, sess)
	assert.Equal(t, "operator-secret", sess.Settings.ClientSecret)
	assert.Equal(t, 7000, sess.Settings.TimeoutMs)
}

func TestConfigure_MissingRequiredFieldIsValidationError(t *testing.T) {
	g := newTestGateway()

	env := dispatch(t, g, CommandConfigure, `{"clientId":"c1"}`)
	assert.Equal(t, string(iconerr.CodeValidation), errorCode(t, env))
}

func TestConfigure_SemanticFailures(t *testing.T) {
	tests := []struct {
		name string
		args string
	}{
		{"relative base URL", `{"baseUrl":"review.example.com","clientId":"c1"}`},
		{"wrong scheme", `{"baseUrl":"ftp://review.example.com","clientId":"c1"}`},
		{"negative timeout", `{"baseUrl":"https://review.example.com","clientId":"c1","timeoutMs":-1}`},
		{"negative retries", `{"baseUrl":"https://review.example.com","clientId":"c1","maxRetries":-2}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGateway()

			env := dispatch(t, g, CommandConfigure, tc.args)
			assert.Equal(t, string(iconerr.CodeConfiguration), errorCode(t, env))
			assert.False(t, g.Configured(), "failed configure must not install a session")
		})
	}
}

func TestConfigure_FailureKeepsPriorSession(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://first.example.com")
	first := g.Session()

	env := dispatch(t, g, CommandConfigure, `{"baseUrl":"not a url","clientId":"c2"}`)
	require.False(t, env.Success)

	assert.Same(t, first, g.Session(), "failed reconfigure must leave the prior session untouched")
	assert.Equal(t, "https://first.example.com", g.Session().Settings.BaseURL)
}

// --- reconfigure isolation ---

func TestReconfigure_SwapsSessionWholesale(t *testing.T) {
	baseURL, _, _ := newFakePlatform(t)

	g := newTestGateway()
	configureGateway(t, g, baseURL)

	env := dispatch(t, g, "iconect_auth_password", `{"username":"u","password":"p"}`)
	require.True(t, env.Success, "password auth failed: %+v", env.Error)

	st := dispatch(t, g, "iconect_auth_status", `{}`)
	require.True(t, st.Success)
	assert.True(t, st.Data.(AuthStatusData).Authenticated)

	first := g.Session()
	configureGateway(t, g, "https://other.example.com")

	assert.NotSame(t, first, g.Session())

	st = dispatch(t, g, "iconect_auth_status", `{}`)
	require.True(t, st.Success)
	assert.False(t, st.Data.(AuthStatusData).Authenticated,
		"credentials from the prior session must not survive a reconfigure")
}

// --- envelope totality ---

func TestDispatch_EnvelopeTotality(t *testing.T) {
	baseURL, _, _ := newFakePlatform(t)

	g := newTestGateway()
	configureGateway(t, g, baseURL)

	cases := []struct {
		name string
		args string
	}{
		{"iconect_auth_status", `{}`},
		{"iconect_auth_password", `{"username":"u","password":"p"}`},
		{"iconect_list_projects", `{}`},
		{"iconect_get_project", `{"projectId":""}`},
		{"iconect_nope", `{}`},
		{"iconect_auth_password", `not json`},
	}

	for _, tc := range cases {
		env := g.Dispatch(context.Background(), tc.name, json.RawMessage(tc.args))
		if env.Success {
			assert.Nil(t, env.Error, "%s: success envelope must not carry an error", tc.name)
		} else {
			require.NotNil(t, env.Error, "%s: failure envelope must carry an error", tc.name)
			assert.Nil(t, env.Data, "%s: failure envelope must not carry data", tc.name)
			assert.NotEmpty(t, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		}
	}
}

func TestDispatch_PanicBecomesInternalError(t *testing.T) {
	g := newTestGateway()

	reg, err := command.NewRegistry([]command.Descriptor{
		command.New("iconect_boom", "always panics",
			func(context.Context, struct{}) (any, string, error) {
				panic("wiring bug")
			}),
	})
	require.NoError(t, err)
	g.swap(&Session{Registry: reg})

	env := dispatch(t, g, "iconect_boom", `{}`)
	assert.Equal(t, string(iconerr.CodeInternal), errorCode(t, env))
	assert.Nil(t, env.Data)
}

func TestDispatch_NilArguments(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://review.example.com")

	env := g.Dispatch(context.Background(), "iconect_auth_status", nil)
	require.True(t, env.Success)
	assert.False(t, env.Data.(AuthStatusData).Authenticated)
}

// --- auth commands through dispatch ---

func TestAuthPassword_ThenStatus(t *testing.T) {
	baseURL, tokenCalls, _ := newFakePlatform(t)

	g := newTestGateway()
	configureGateway(t, g, baseURL)

	env := dispatch(t, g, "iconect_auth_password", `{"username":"reviewer","password":"pw"}`)
	require.True(t, env.Success)
	assert.Equal(t, "authenticated as reviewer", env.Message)
	assert.Equal(t, 1, *tokenCalls)

	data := env.Data.(AuthStatusData)
	assert.True(t, data.Authenticated)
	assert.Equal(t, "Bearer", data.TokenType)
	assert.True(t, data.HasRefreshToken)
	assert.False(t, data.IsExpired)
	assert.NotEmpty(t, data.ExpiresAt)
	assert.Positive(t, data.ExpiresInSeconds)
}

func TestAuthPassword_GrantRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad credentials"}`))
	}))
	t.Cleanup(srv.Close)

	g := newTestGateway()
	configureGateway(t, g, srv.URL)

	env := dispatch(t, g, "iconect_auth_password", `{"username":"u","password":"wrong"}`)
	assert.Equal(t, string(iconerr.CodeAuthentication), errorCode(t, env))
	assert.Contains(t, env.Error.Message, "bad credentials")
}

func TestAuthURL_GeneratesPKCEAndState(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://review.example.com")

	env := dispatch(t, g, "iconect_auth_url", `{"redirectUri":"https://app.example.com/callback","scope":"read"}`)
	require.True(t, env.Success)

	data := env.Data.(AuthURLData)
	assert.NotEmpty(t, data.State)
	assert.NotEmpty(t, data.CodeChallenge)
	assert.NotEmpty(t, data.CodeVerifier)

	u, err := url.Parse(data.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "c1", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read", q.Get("scope"))
	assert.Equal(t, data.State, q.Get("state"))
	assert.Equal(t, data.CodeChallenge, q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestAuthURL_ExternalChallengePassthrough(t *testing.T) {
	g := newTestGateway()
	configureGateway(t, g, "https://review.example.com")

	env := dispatch(t, g, "iconect_auth_url",
		`{"redirectUri":"https://app.example.com/cb","codeChallenge":"ext-challenge","state":"ext-state"}`)
	require.True(t, env.Success)

	data := env.Data.(AuthURLData)
	assert.Equal(t, "ext-challenge", data.CodeChallenge)
	assert.Equal(t, "ext-state", data.State)
	assert.Empty(t, data.CodeVerifier, "externally supplied challenge means no verifier to return")
}

func TestLogout_ClearsCredentials(t *testing.T) {
	baseURL, _, _ := newFakePlatform(t)

	g := newTestGateway()
	configureGateway(t, g, baseURL)

	require.True(t, dispatch(t, g, "iconect_auth_password", `{"username":"u","password":"p"}`).Success)

	env := dispatch(t, g, "iconect_logout", `{}`)
	require.True(t, env.Success)
	assert.False(t, env.Data.(AuthStatusData).Authenticated)
	assert.Equal(t, "logged out", env.Message)
}

// --- expired credentials recovered mid-command ---

func TestDispatch_RefreshAndReplayMidCommand(t *testing.T) {
	baseURL, tokenCalls, projectCalls := newFakePlatform(t)

	g := newTestGateway()
	configureGateway(t, g, baseURL)
	require.True(t, dispatch(t, g, "iconect_auth_password", `{"username":"u","password":"p"}`).Success)

	// Invalidate the stored token server-side: the fake pins to the most
	// recently issued token, so a direct issue leaves the store stale.
	resp, err := http.PostForm(baseURL+"/oauth/token", url.Values{"grant_type": {"password"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 2, *tokenCalls)

	env := dispatch(t, g, "iconect_list_projects", `{}`)
	require.True(t, env.Success, "expected refresh-and-replay to recover: %+v", env.Error)

	assert.Equal(t, 3, *tokenCalls, "one refresh exchange expected")
	assert.Equal(t, 2, *projectCalls, "original call plus exactly one replay")
	assert.JSONEq(t, `{"items":[],"total":0}`, string(env.Data.(json.RawMessage)))
}
