package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cidfeed/pkg/auth"
	"cidfeed/pkg/command"
	"cidfeed/pkg/journal"
	"cidfeed/pkg/model"
	"cidfeed/pkg/node"
	"cidfeed/pkg/security"
	"cidfeed/pkg/store"
)

type bridge struct {
	srv     *httptest.Server
	hub     *EventHub
	journal *journal.Journal
}

func newBridge(t *testing.T, opts Options) *bridge {
	t.Helper()
	backend := store.NewMemoryBackend()
	j, err := journal.Open(filepath.Join(t.TempDir(), journal.FileName), nil)
	require.NoError(t, err)
	hub := NewEventHub(nil)
	d := command.New(node.Open(backend, nil), security.Open(backend, nil),
		command.WithRecorder(j), command.WithPublisher(hub))

	opts.Journal = j
	opts.Hub = hub
	mux := http.NewServeMux()
	RegisterRoutes(mux, d, opts)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		_ = j.Close()
	})
	return &bridge{srv: srv, hub: hub, journal: j}
}

func (b *bridge) do(t *testing.T, method, path, body string, header http.Header) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, b.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := b.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHealthAndBanner(t *testing.T) {
	b := newBridge(t, Options{})
	code, body := b.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", string(body))

	code, _ = b.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = b.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "cidfeed_node_online")
}

func TestInvokeRoutes(t *testing.T) {
	b := newBridge(t, Options{})

	code, body := b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"online":true,"peer_count":3}`, string(body))

	code, body = b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node_with_mode", `{"mode":"private"}`, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"online":true,"peer_count":2}`, string(body))

	code, body = b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node_with_mode", `{"mode":"warp"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"error":"unsupported mode: warp"}`, string(body))

	code, body = b.do(t, http.MethodPost, "/api/v1/invoke", `{"command":"get_private_node_status"}`, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"online":true,"peer_count":2}`, string(body))

	code, body = b.do(t, http.MethodPost, "/api/v1/invoke", `{"command":"flush_revocation_queue","args":{"ids":["a","fail-b","a"]}}`, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"flushed":["a"],"failed":["fail-b","a"]}`, string(body))

	code, _ = b.do(t, http.MethodPost, "/api/v1/invoke/self_destruct", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = b.do(t, http.MethodPost, "/api/v1/invoke/set_security_state", `{"identity":`, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = b.do(t, http.MethodGet, "/api/v1/invoke/get_private_node_status", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	code, _ = b.do(t, http.MethodPost, "/api/v1/invoke", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCommandsAndJournal(t *testing.T) {
	b := newBridge(t, Options{})

	code, body := b.do(t, http.MethodGet, "/api/v1/commands", "", nil)
	require.Equal(t, http.StatusOK, code)
	var names []string
	require.NoError(t, json.Unmarshal(body, &names))
	assert.Contains(t, names, "simulate_peer_join")

	b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node", "", nil)
	b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node_with_mode", `{"mode":"x"}`, nil)
	b.do(t, http.MethodPost, "/api/v1/invoke/stop_private_node", "", nil)

	code, body = b.do(t, http.MethodGet, "/api/v1/journal?limit=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	var entries []model.JournalEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "start_private_node_with_mode", entries[0].Command)
	assert.False(t, entries[0].OK)
	assert.Equal(t, "stop_private_node", entries[1].Command)

	code, _ = b.do(t, http.MethodGet, "/api/v1/journal?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStaticTokenAuth(t *testing.T) {
	b := newBridge(t, Options{Token: "s3cret"})

	code, _ := b.do(t, http.MethodPost, "/api/v1/invoke/get_private_node_status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = b.do(t, http.MethodPost, "/api/v1/invoke/get_private_node_status", "", http.Header{"X-Auth-Token": {"s3cret"}})
	assert.Equal(t, http.StatusOK, code)

	code, _ = b.do(t, http.MethodPost, "/api/v1/invoke/get_private_node_status", "", http.Header{"Authorization": {"Bearer s3cret"}})
	assert.Equal(t, http.StatusOK, code)

	code, _ = b.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code, "health is public")

	code, _ = b.do(t, http.MethodPost, "/api/v1/auth/token", `{"secret":"x"}`, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestTokenExchange(t *testing.T) {
	hash, err := auth.HashSecret("open-sesame")
	require.NoError(t, err)
	b := newBridge(t, Options{ShellSecretHash: hash, Issuer: auth.NewIssuer("jwt-key"), TokenTTL: time.Minute})

	code, _ := b.do(t, http.MethodPost, "/api/v1/auth/token", `{"secret":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = b.do(t, http.MethodPost, "/api/v1/auth/token", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := b.do(t, http.MethodPost, "/api/v1/auth/token", `{"secret":"open-sesame","shell":"tray"}`, nil)
	require.Equal(t, http.StatusOK, code)
	var tok TokenResponse
	require.NoError(t, json.Unmarshal(body, &tok))
	claims, err := auth.NewIssuer("jwt-key").Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "tray", claims.Shell)

	code, _ = b.do(t, http.MethodGet, "/api/v1/commands", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = b.do(t, http.MethodGet, "/api/v1/commands", "", http.Header{"Authorization": {"Bearer " + tok.Token}})
	assert.Equal(t, http.StatusOK, code)
}

func TestEventsPushedToSubscribers(t *testing.T) {
	b := newBridge(t, Options{})
	url := "ws" + strings.TrimPrefix(b.srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return b.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	code, _ := b.do(t, http.MethodPost, "/api/v1/invoke/start_private_node_with_mode", `{"mode":"easy"}`, nil)
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt struct {
		Type    string           `json:"type"`
		Payload model.NodeStatus `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, model.EventNodeStatus, evt.Type)
	assert.Equal(t, model.NodeStatus{Online: true, PeerCount: 4}, evt.Payload)

	_ = conn.Close()
	require.Eventually(t, func() bool { return b.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestJournalDisabled(t *testing.T) {
	backend := store.NewMemoryBackend()
	d := command.New(node.Open(backend, nil), security.Open(backend, nil))
	mux := http.NewServeMux()
	RegisterRoutes(mux, d, Options{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/journal", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "no hub, no events route")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/invoke/set_security_state", bytes.NewBufferString(`{"audit_log":" [] "}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"audit_log":"[]"}`, rec.Body.String())
}
