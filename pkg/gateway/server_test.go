package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnvidr/lined/pkg/adapter"
	"github.com/arnvidr/lined/pkg/session"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	srv, err := NewServer(Config{
		Host:         "127.0.0.1",
		Port:         8643,
		SharedSecret: "test-secret",
		Session:      session.Config{WindowSize: 10, Overlap: 2},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
}

func TestNewServer(t *testing.T) {
	t.Run("requires a valid port", func(t *testing.T) {
		_, err := NewServer(Config{Port: 0, SharedSecret: "s"})
		assert.Error(t, err)
	})

	t.Run("requires a shared secret", func(t *testing.T) {
		_, err := NewServer(Config{Port: 8643})
		assert.Error(t, err)
	})
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthorization(t *testing.T) {
	_, ts := newTestServer(t)

	t.Run("missing secret is rejected", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "?secret=wrong"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("query secret is accepted", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "?secret=test-secret"), nil)
		require.NoError(t, err)
		conn.Close()
	})

	t.Run("bearer header is accepted", func(t *testing.T) {
		header := http.Header{"Authorization": []string{"Bearer test-secret"}}
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), header)
		require.NoError(t, err)
		conn.Close()
	})
}

func TestCommandRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0644))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "?secret=test-secret"), nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(req Request) Response {
		t.Helper()
		require.NoError(t, conn.WriteJSON(req))
		var resp Response
		require.NoError(t, conn.ReadJSON(&resp))
		return resp
	}

	resp := send(Request{ID: "1", Command: "open " + path})
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, adapter.ExitOK, resp.Code)
	assert.Contains(t, resp.Output, "1:a")

	resp = send(Request{ID: "2", Command: "change 2:3", Payload: "x\ny\nz\n"})
	assert.Equal(t, adapter.ExitOK, resp.Code)
	assert.Contains(t, resp.Output, "File updated.")

	resp = send(Request{ID: "3", Command: "undo"})
	assert.Equal(t, adapter.ExitOK, resp.Code)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\nd\n", string(onDisk))

	resp = send(Request{ID: "4", Command: ""})
	assert.Equal(t, adapter.ExitFailure, resp.Code)
	assert.Equal(t, "command is required", resp.Error)
}

func TestSessionsAreIndependent(t *testing.T) {
	_, ts := newTestServer(t)

	pathA := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("from-a\n"), 0644))

	connA, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "?secret=test-secret"), nil)
	require.NoError(t, err)
	defer connA.Close()

	connB, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "?secret=test-secret"), nil)
	require.NoError(t, err)
	defer connB.Close()

	require.NoError(t, connA.WriteJSON(Request{ID: "1", Command: "open " + pathA}))
	var resp Response
	require.NoError(t, connA.ReadJSON(&resp))
	require.Equal(t, adapter.ExitOK, resp.Code)

	// The second connection has its own session with no open file.
	require.NoError(t, connB.WriteJSON(Request{ID: "1", Command: "undo"}))
	require.NoError(t, connB.ReadJSON(&resp))
	assert.Equal(t, adapter.ExitFailure, resp.Code)
	assert.Contains(t, resp.Output, "no file is currently open")
}

func TestShutdown(t *testing.T) {
	srv, err := NewServer(Config{
		Host:         "127.0.0.1",
		Port:         8643,
		SharedSecret: "s",
	})
	require.NoError(t, err)

	// Shutdown without ever serving completes cleanly.
	require.NoError(t, srv.Shutdown(context.Background()))
}
