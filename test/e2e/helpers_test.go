package e2e_test

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
	"github.com/Dizzident/iconect-mcp/internal/gateway"
	"github.com/Dizzident/iconect-mcp/internal/mcpserver"
	"github.com/Dizzident/iconect-mcp/internal/server"
)

const (
	testUsername = "reviewer"
	testPassword = "secret"
	testClientID = "e2e-agent-client"
	redirectURI  = "http://127.0.0.1:19876/callback"
)

// platform is a minimal iCONECT stand-in: an OAuth token endpoint
// covering the password, refresh and authorization-code grants, plus a
// couple of project routes. Only the most recently issued access token
// is accepted, so revoking it forces the gateway through a refresh.
type platform struct {
	URL string

	mu            sync.Mutex
	tokenCalls    int
	projectCalls  int
	current       string
	refresh       string
	authCode      string
	rejectRefresh bool
	lastTokenForm url.Values
}

func newPlatform(t *testing.T) *platform {
	t.Helper()

	p := &platform{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", p.handleToken)
	mux.HandleFunc("GET /v1/projects", p.handleListProjects)
	mux.HandleFunc("GET /v1/projects/{id}", p.handleGetProject)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	p.URL = ts.URL

	return p
}

func (p *platform) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastTokenForm = r.PostForm

	switch r.PostForm.Get("grant_type") {
	case "password":
		if r.PostForm.Get("username") != testUsername || r.PostForm.Get("password") != testPassword {
			oauthError(w, "invalid_grant", "bad credentials")
			return
		}
	case "refresh_token":
		if p.rejectRefresh || p.refresh == "" || r.PostForm.Get("refresh_token") != p.refresh {
			oauthError(w, "invalid_grant", "refresh token revoked")
			return
		}
	case "authorization_code":
		if p.authCode == "" || r.PostForm.Get("code") != p.authCode {
			oauthError(w, "invalid_grant", "unknown authorization code")
			return
		}
		if r.PostForm.Get("code_verifier") == "" {
			oauthError(w, "invalid_request", "code_verifier is required")
			return
		}
		p.authCode = ""
	default:
		oauthError(w, "unsupported_grant_type", "grant type not supported")
		return
	}

	p.tokenCalls++
	p.current = fmt.Sprintf("tok-%d", p.tokenCalls)
	p.refresh = fmt.Sprintf("refresh-%d", p.tokenCalls)

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":3600,"refresh_token":%q,"scope":"review"}`,
		p.current, p.refresh)
}

func oauthError(w http.ResponseWriter, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `{"error":%q,"error_description":%q}`, code, description)
}

func (p *platform) authorized(r *http.Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current != "" && r.Header.Get("Authorization") == "Bearer "+p.current
}

func (p *platform) handleListProjects(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.projectCalls++
	p.mu.Unlock()

	if !p.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"items":[{"id":"p1","name":"Review Alpha"}],"total":1}`))
}

func (p *platform) handleGetProject(w http.ResponseWriter, r *http.Request) {
	if !p.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if r.PathValue("id") != "p1" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"project not found"}}`))
		return
	}

	_, _ = w.Write([]byte(`{"id":"p1","name":"Review Alpha","status":"active"}`))
}

// RevokeAccess invalidates the current access token without touching the
// refresh token, the way a server-side session expiry looks to a client.
func (p *platform) RevokeAccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = "revoked"
}

// RejectRefresh makes every subsequent refresh grant fail.
func (p *platform) RejectRefresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rejectRefresh = true
}

// MintAuthCode simulates the user approving the authorization request in
// a browser: the platform issues a single-use code for the redirect.
func (p *platform) MintAuthCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authCode = "code-7391"

	return p.authCode
}

func (p *platform) TokenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.tokenCalls
}

func (p *platform) ProjectCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.projectCalls
}

func (p *platform) LastTokenForm() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastTokenForm
}

// harness holds the full e2e stack: the fake platform plus the gateway
// served over the streamable HTTP transport.
type harness struct {
	URL      string
	Platform *platform
	Client   *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	platform := newPlatform(t)
	logger := slog.New(slog.DiscardHandler)

	bridge := mcpserver.New(gateway.New(config.Settings{}, logger), "test", logger)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return bridge.Server()
	}, nil)

	ts := httptest.NewServer(server.NewMux(server.MuxConfig{
		MCPHandler: mcpHandler,
		Gateway:    bridge.Gateway(),
	}))
	t.Cleanup(ts.Close)

	return &harness{URL: ts.URL, Platform: platform, Client: ts.Client()}
}

// mcpSession connects an MCP client over streamable HTTP.
func (h *harness) mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	transport := &mcp.StreamableClientTransport{
		Endpoint:             h.URL + "/mcp",
		HTTPClient:           h.Client,
		DisableStandaloneSSE: true,
	}

	client := mcp.NewClient(
		&mcp.Implementation{Name: "e2e-test-client", Version: "test"},
		nil,
	)

	session, err := client.Connect(t.Context(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

// callTool invokes a tool and decodes the envelope from its text content.
func (h *harness) callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (command.Envelope, *mcp.CallToolResult) {
	t.Helper()

	result, err := session.CallTool(t.Context(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Content, "tool result has no content")
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")

	var env command.Envelope
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &env))

	return env, result
}

// configure points the gateway at the fake platform.
func (h *harness) configure(t *testing.T, session *mcp.ClientSession) {
	t.Helper()

	env, _ := h.callTool(t, session, "iconect_configure", map[string]any{
		"baseUrl":  h.Platform.URL,
		"clientId": testClientID,
	})
	require.True(t, env.Success, "configure failed: %+v", env.Error)
}

// authenticate runs the password grant for the test reviewer.
func (h *harness) authenticate(t *testing.T, session *mcp.ClientSession) {
	t.Helper()

	env, _ := h.callTool(t, session, "iconect_auth_password", map[string]any{
		"username": testUsername,
		"password": testPassword,
	})
	require.True(t, env.Success, "password grant failed: %+v", env.Error)
}

// envelopeData asserts the envelope succeeded and returns its data object.
func envelopeData(t *testing.T, env command.Envelope) map[string]any {
	t.Helper()

	require.True(t, env.Success, "command failed: %+v", env.Error)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "envelope data is not an object: %T", env.Data)

	return data
}

func listToolNames(t *testing.T, session *mcp.ClientSession) []string {
	t.Helper()

	res, err := session.ListTools(t.Context(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}

	return names
}
