package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"ai-studypal-be/internal/bootstrap"
	"ai-studypal-be/internal/config"
	"ai-studypal-be/internal/server"
	"ai-studypal-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProvider struct {
	reply string
}

func (p *echoProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *echoProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.reply, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "integration_secret")
	t.Setenv("CREDENTIAL_FILE", filepath.Join(dir, "users.json"))
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg, &echoProvider{reply: "fake model reply"})
	srv := server.New(cfg, container)
	return srv.GetApp()
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, _ := doJSON(t, app, "POST", "/api/auth/register", "",
		`{"name":"Alice","username":"alice","password":"pw123"}`)
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, app, "POST", "/api/auth/login", "",
		`{"username":"alice","password":"pw123"}`)
	require.Equal(t, http.StatusOK, status)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginAndState(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	status, env := doJSON(t, app, "GET", "/api/study/v1/state", token, "")
	require.Equal(t, http.StatusOK, status)

	var snap struct {
		UserName    string `json:"user_name"`
		HasDocument bool   `json:"has_document"`
		InputSeq    int    `json:"input_seq"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "Alice", snap.UserName)
	assert.False(t, snap.HasDocument)
	assert.Equal(t, 0, snap.InputSeq)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	app := newTestApp(t)
	_ = registerAndLogin(t, app)

	status, env := doJSON(t, app, "POST", "/api/auth/register", "",
		`{"name":"Imposter","username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestLoginWithBadPassword(t *testing.T) {
	app := newTestApp(t)
	_ = registerAndLogin(t, app)

	status, env := doJSON(t, app, "POST", "/api/auth/login", "",
		`{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestChatFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	status, env := doJSON(t, app, "POST", "/api/study/v1/chat", token,
		`{"message":"hello model"}`)
	require.Equal(t, http.StatusOK, status)

	var chat struct {
		Reply    string `json:"reply"`
		InputSeq int    `json:"input_seq"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &chat))
	assert.Equal(t, "fake model reply", chat.Reply)
	assert.Equal(t, 1, chat.InputSeq)
}

func TestDocumentOperationsRequireUpload(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	for _, path := range []string{
		"/api/study/v1/summary",
		"/api/study/v1/topics",
		"/api/study/v1/flashcards",
	} {
		status, env := doJSON(t, app, "POST", path, token, "")
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, "please upload a document first", env.Message, path)
	}

	status, env := doJSON(t, app, "POST", "/api/study/v1/ask", token,
		`{"question":"anything?"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "please upload a document first", env.Message)
}

func TestHistoryExportEmpty(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	req := httptest.NewRequest("GET", "/api/study/v1/history/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "history.json")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", buf.String())
}

func TestHistoryExportAfterChat(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	status, _ := doJSON(t, app, "POST", "/api/study/v1/chat", token,
		`{"message":"first"}`)
	require.Equal(t, http.StatusOK, status)

	req := httptest.NewRequest("GET", "/api/study/v1/history/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var records []struct {
		Kind    string            `json:"kind"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "chat", records[0].Kind)
	assert.Equal(t, "first", records[0].Payload["message"])
}

func TestSummaryExportWithoutSummary(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	status, env := doJSON(t, app, "GET", "/api/study/v1/summary/export", token, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	status, _ := doJSON(t, app, "POST", "/api/auth/logout", token, "")
	require.Equal(t, http.StatusOK, status)

	// The token still verifies, but the session behind it is gone.
	status, env := doJSON(t, app, "GET", "/api/study/v1/state", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "session expired, please log in again", env.Message)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, "GET", "/api/study/v1/state", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, "POST", "/api/study/v1/chat", "garbage.token.here",
		`{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCredentialsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "integration_secret")
	t.Setenv("CREDENTIAL_FILE", filepath.Join(dir, "users.json"))
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))

	cfg := config.Load()
	provider := &echoProvider{reply: "ok"}

	app := server.New(cfg, bootstrap.NewContainer(cfg, provider)).GetApp()
	_ = registerAndLogin(t, app)

	// A second container over the same credential file sees the user; the
	// in-memory session does not carry over.
	app2 := server.New(cfg, bootstrap.NewContainer(cfg, provider)).GetApp()
	status, _ := doJSON(t, app2, "POST", "/api/auth/login", "",
		`{"username":"alice","password":"pw123"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestStateTracksChatCount(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app)

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, app, "POST", "/api/study/v1/chat", token,
			fmt.Sprintf(`{"message":"turn %d"}`, i))
		require.Equal(t, http.StatusOK, status)
	}

	status, env := doJSON(t, app, "GET", "/api/study/v1/state", token, "")
	require.Equal(t, http.StatusOK, status)

	var snap struct {
		InputSeq     int    `json:"input_seq"`
		Interactions int    `json:"interactions"`
		LastAnswer   string `json:"last_answer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 3, snap.InputSeq)
	assert.Equal(t, 3, snap.Interactions)
	assert.Equal(t, "fake model reply", snap.LastAnswer)
}
