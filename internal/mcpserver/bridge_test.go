package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dizzident/iconect-mcp/internal/command"
	"github.com/Dizzident/iconect-mcp/internal/config"
	"github.com/Dizzident/iconect-mcp/internal/gateway"
)

// --- test helpers ---

// fakePlatform is a minimal iCONECT stand-in: a token endpoint plus a
// projects listing that accepts only the most recently issued token.
type fakePlatform struct {
	URL          string
	TokenCalls   int
	ProjectCalls int
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	p := &fakePlatform{}
	current := ""

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		p.TokenCalls++
		current = fmt.Sprintf("tok-%d", p.TokenCalls)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":3600,"refresh_token":"r1"}`, current)
	})
	mux.HandleFunc("/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		p.ProjectCalls++
		if r.Header.Get("Authorization") != "Bearer "+current {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"p1","name":"Review Alpha"}],"total":1}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	p.URL = srv.URL

	return p
}

func testSetup(t *testing.T) (*mcp.ClientSession, *fakePlatform) {
	t.Helper()

	platform := newFakePlatform(t)
	bridge := New(gateway.New(config.Settings{}, nil), "test", nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := bridge.Server().Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session, platform
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)

	return result
}

func extractEnvelope(t *testing.T, result *mcp.CallToolResult) command.Envelope {
	t.Helper()

	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent")

	var env command.Envelope
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &env))

	return env
}

func listToolNames(t *testing.T, session *mcp.ClientSession) []string {
	t.Helper()

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	return names
}

func configureSession(t *testing.T, session *mcp.ClientSession, baseURL string) {
	t.Helper()

	result := callTool(t, session, "iconect_configure", map[string]interface{}{
		"baseUrl":  baseURL,
		"clientId": "c1",
	})
	require.False(t, result.IsError)
}

// --- tool publication ---

func TestListTools_UnconfiguredAdvertisesOnlyConfigure(t *testing.T) {
	session, _ := testSetup(t)

	assert.Equal(t, []string{"iconect_configure"}, listToolNames(t, session))
}

func TestConfigure_PublishesFullToolSet(t *testing.T) {
	session, platform := testSetup(t)
	configureSession(t, session, platform.URL)

	names := listToolNames(t, session)
	assert.Len(t, names, 68)
	assert.Contains(t, names, "iconect_configure")
	assert.Contains(t, names, "iconect_auth_password")
	assert.Contains(t, names, "iconect_list_projects")
	assert.Contains(t, names, "iconect_run_search")
}

func TestReconfigure_KeepsToolSetStable(t *testing.T) {
	session, platform := testSetup(t)
	configureSession(t, session, platform.URL)
	configureSession(t, session, platform.URL)

	assert.Len(t, listToolNames(t, session), 68)
}

func TestFailedConfigure_PublishesNothing(t *testing.T) {
	session, _ := testSetup(t)

	result := callTool(t, session, "iconect_configure", map[string]interface{}{
		"baseUrl":  "not a url",
		"clientId": "c1",
	})
	assert.True(t, result.IsError)

	env := extractEnvelope(t, result)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFIGURATION_ERROR", env.Error.Code)

	assert.Equal(t, []string{"iconect_configure"}, listToolNames(t, session))
}

func TestUnpublishedToolIsRejectedByProtocol(t *testing.T) {
	session, _ := testSetup(t)

	// Unconfigured servers never advertise capability tools, so the call
	// fails at the protocol layer before reaching the gateway.
	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "iconect_list_projects",
		Arguments: map[string]interface{}{},
	})
	require.Error(t, err)
}

// --- envelope serialization ---

func TestConfigure_ResultCarriesEnvelope(t *testing.T) {
	session, platform := testSetup(t)

	result := callTool(t, session, "iconect_configure", map[string]interface{}{
		"baseUrl":  platform.URL,
		"clientId": "c1",
	})
	require.False(t, result.IsError)

	env := extractEnvelope(t, result)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, platform.URL, data["baseUrl"])
	assert.Equal(t, "c1", data["clientId"])
}

func TestAuthStatus_UnauthenticatedEnvelope(t *testing.T) {
	session, platform := testSetup(t)
	configureSession(t, session, platform.URL)

	result := callTool(t, session, "iconect_auth_status", map[string]interface{}{})
	require.False(t, result.IsError)

	env := extractEnvelope(t, result)
	assert.True(t, env.Success)
	assert.Equal(t, "not authenticated", env.Message)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["authenticated"])
}

func TestValidationFailure_SetsIsError(t *testing.T) {
	session, platform := testSetup(t)
	configureSession(t, session, platform.URL)

	result := callTool(t, session, "iconect_get_project", map[string]interface{}{})
	assert.True(t, result.IsError)

	env := extractEnvelope(t, result)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

// --- end-to-end command flow ---

func TestPasswordAuth_ThenProjectListing(t *testing.T) {
	session, platform := testSetup(t)
	configureSession(t, session, platform.URL)

	result := callTool(t, session, "iconect_auth_password", map[string]interface{}{
		"username": "reviewer",
		"password": "pw",
	})
	require.False(t, result.IsError)

	env := extractEnvelope(t, result)
	assert.Equal(t, "authenticated as reviewer", env.Message)

	result = callTool(t, session, "iconect_list_projects", map[string]interface{}{})
	require.False(t, result.IsError)

	env = extractEnvelope(t, result)
	require.True(t, env.Success)

	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":"p1","name":"Review Alpha"}],"total":1}`, string(raw))

	assert.Equal(t, 1, platform.TokenCalls)
	assert.Equal(t, 1, platform.ProjectCalls)
}

func TestAuthFailure_MapsToAuthenticationError(t *testing.T) {
	session, _ := testSetup(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad credentials"}`))
	}))
	t.Cleanup(srv.Close)

	configureSession(t, session, srv.URL)

	result := callTool(t, session, "iconect_auth_password", map[string]interface{}{
		"username": "reviewer",
		"password": "wrong",
	})
	assert.True(t, result.IsError)

	env := extractEnvelope(t, result)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTHENTICATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Message, "bad credentials")
}
