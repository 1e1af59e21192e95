package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sv2linux/sv2-bridge/internal/bridge"
	"github.com/sv2linux/sv2-bridge/internal/delivery"
	sqliteRepo "github.com/sv2linux/sv2-bridge/internal/repositories/invocations/sqlite"
)

func newTestHandler(t *testing.T) (*Handler, *delivery.Writer) {
	t.Helper()
	writer := delivery.NewWriter(t.TempDir())
	repo, err := sqliteRepo.NewSQLiteRepo(filepath.Join(t.TempDir(), "invocations.db"))
	require.NoError(t, err)
	t.Cleanup(repo.Disconnect)
	h := NewHandler(bridge.NewService(writer, repo), repo, 8888, "code")
	h.openBrowser = func(string) error { return nil }
	return h, writer
}

func TestCallback_SuccessUpdatesDeliveryFile(t *testing.T) {
	h, writer := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/auth/callback?code=abc123&state=xyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	code, err := os.ReadFile(writer.CodePath())
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(code))
}

func TestCallback_MissingParamsLeavesFileUnchanged(t *testing.T) {
	h, writer := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/auth/callback?code=abc123")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/auth/callback")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	code, err := os.ReadFile(writer.CodePath())
	require.NoError(t, err)
	assert.Equal(t, "abc123", string(code), "failed request must not touch the delivery file")
}

func TestCallback_ProviderDenialIsForbidden(t *testing.T) {
	h, writer := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/auth/callback?error=access_denied")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, statErr := os.Stat(writer.CodePath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestCallback_BareCallbackPathAccepted(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/callback?code=abc123")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthStart_ReturnsAuthorizationURL(t *testing.T) {
	h, _ := newTestHandler(t)
	var opened string
	h.openBrowser = func(u string) error { opened = u; return nil }
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/auth/start")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status  string `json:"status"`
		AuthURL string `json:"auth_url"`
		State   string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.NotEmpty(t, body.State)
	assert.Contains(t, body.AuthURL, authEndpoint)
	assert.Contains(t, body.AuthURL, "client_id="+clientID)
	assert.Contains(t, body.AuthURL, "response_type=code")
	assert.Equal(t, body.AuthURL, opened)
}

func TestAuthStatus_ReportsSession(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	status := func() map[string]any {
		resp, err := http.Get(srv.URL + "/auth/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	before := status()
	assert.Equal(t, false, before["has_auth_code"])
	assert.EqualValues(t, 8888, before["port"])
	assert.EqualValues(t, 0, before["invocations_handled"])

	resp, err := http.Get(srv.URL + "/auth/callback?code=abc123")
	require.NoError(t, err)
	resp.Body.Close()

	after := status()
	assert.Equal(t, true, after["has_auth_code"])
	assert.EqualValues(t, 1, after["invocations_handled"])
	assert.Equal(t, "success", after["last_outcome"])
	assert.Equal(t, "http-request", after["last_origin"])
}
