package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/config"
	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/Tyrowin/oxidechat/internal/server"
	"github.com/Tyrowin/oxidechat/internal/store"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:8080"

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testConfig is the configuration every test server starts from.
func testConfig() config.Config {
	return config.Config{
		Host:                    "127.0.0.1",
		Port:                    8080,
		AllowedOrigins:          testOrigin,
		LogLevel:                "info",
		AuthBackend:             config.BackendFake,
		CaptchaBackend:          config.BackendFake,
		UserBackend:             config.BackendFake,
		ChatPolicy:              config.PolicyBroadcast,
		JWTSecret:               "test-secret-that-is-long-enough-123",
		AccessTokenTTL:          time.Hour,
		RefreshTokenTTL:         24 * time.Hour,
		CaptchaTTL:              time.Minute,
		MaxMessageSize:          4096,
		MailboxSize:             64,
		InboundBufferSize:       64,
		RateLimitRefillInterval: time.Millisecond,
		ShutdownTimeout:         2 * time.Second,
	}
}

type testEnv struct {
	server *httptest.Server
	hub    *chat.Hub
}

// newTestEnv serves backends built from cfg on an httptest server.
func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	db, err := store.Open("", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	backends, err := server.NewBackends(cfg, db, testLogger())
	require.NoError(t, err)
	return newTestEnvWithBackends(t, cfg, backends)
}

func newTestEnvWithBackends(t *testing.T, cfg config.Config, backends server.Backends) *testEnv {
	t.Helper()
	hub := chat.NewHub(testLogger(), backends.Policy, chat.Options{
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitRefill: cfg.RateLimitRefillInterval,
	})
	go hub.Run()

	srv := httptest.NewServer(server.New(cfg, hub, backends, testLogger()).Handler())
	t.Cleanup(func() {
		_ = hub.Shutdown(2 * time.Second)
		srv.Close()
	})
	return &testEnv{server: srv, hub: hub}
}

func (e *testEnv) wsURL() string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/chat"
}

// dial opens a chat connection. Empty token or origin leave the header out.
func (e *testEnv) dial(token, origin string) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	if origin != "" {
		header.Set("Origin", origin)
	}
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	return dialer.Dial(e.wsURL(), header)
}

// connect dials with token and waits until the hub has admitted the
// connection.
func (e *testEnv) connect(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	before := e.hub.Online()
	conn, resp, err := e.dial(token, testOrigin)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return e.hub.Online() > before },
		2*time.Second, 10*time.Millisecond, "connection was not admitted")
	return conn
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireAPIError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body := decodeJSON[map[string]string](t, resp)
	require.Equal(t, message, body["error"])
}

func sendChat(t *testing.T, conn *websocket.Conn, conversation domain.ConversationID, content string) {
	t.Helper()
	data, err := chat.EncodeClientFrame(chat.Send{ChatContent: chat.ChatContent{
		ConversationID: conversation,
		Content:        content,
	}})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func expectDistribute(t *testing.T, conn *websocket.Conn) chat.Distribute {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	frame, err := chat.DecodeServerFrame(data)
	require.NoError(t, err)
	d, ok := frame.(chat.Distribute)
	require.True(t, ok)
	return d
}

// expectSilence fails if conn receives a frame within wait. It leaves conn
// unusable for further reads, so call it last.
func expectSilence(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame %s", data)
}
