package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ent0n29/neuromod/internal/config"
	"github.com/ent0n29/neuromod/internal/lifecycle"
	"github.com/ent0n29/neuromod/internal/observability"
	"github.com/ent0n29/neuromod/internal/session"
	"github.com/ent0n29/neuromod/internal/tools"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := session.NewInMemoryStore()
	metrics := observability.NewMetrics("test_httpapi", nil)
	sessions := lifecycle.NewService(store, lifecycle.WithMetrics(metrics))
	catalog := tools.NewCatalog(sessions, tools.WithMetrics(metrics), tools.WithDefaultOwner("default-owner"))
	srv := New(config.Config{}, catalog, sessions, store.Mode(), metrics, nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postTool(t *testing.T, ts *httptest.Server, name, owner, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/tools/"+name, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s error = %v", name, err)
	}
	defer res.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s response: %v", name, err)
	}
	return res, payload
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer res.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s response: %v", url, err)
	}
	return res, payload
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	res, payload := getJSON(t, ts.URL+"/healthz")
	if res.StatusCode != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("healthz = %d %+v", res.StatusCode, payload)
	}
	res, payload = getJSON(t, ts.URL+"/readyz")
	if res.StatusCode != http.StatusOK || payload["store_mode"] != "local" {
		t.Fatalf("readyz = %d %+v", res.StatusCode, payload)
	}
}

func TestListTools(t *testing.T) {
	ts := newTestServer(t)

	_, payload := getJSON(t, ts.URL+"/v1/tools")
	listed, ok := payload["tools"].([]any)
	if !ok {
		t.Fatalf("tools = %T, want list", payload["tools"])
	}
	if len(listed) != 11 {
		t.Fatalf("len(tools) = %d, want 11", len(listed))
	}
	first := listed[0].(map[string]any)
	if first["name"] != tools.NameInitializeSession {
		t.Fatalf("first tool = %v, want %s", first["name"], tools.NameInitializeSession)
	}
}

func TestCallToolFlow(t *testing.T) {
	ts := newTestServer(t)

	res, created := postTool(t, ts, "initialize_session", "ada", `{"dose":150}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("initialize_session status = %d, body %+v", res.StatusCode, created)
	}
	if created["owner"] != "ada" || created["intensity"] != 0.5 {
		t.Fatalf("unexpected session: %+v", created)
	}
	if created["current_mode"] != nil {
		t.Fatalf("current_mode = %v, want null", created["current_mode"])
	}

	res, result := postTool(t, ts, "activate_perspective_shift", "ada", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d, body %+v", res.StatusCode, result)
	}
	if result["mode"] != "perspective_shift" || result["active_intensity"] != 0.5 {
		t.Fatalf("unexpected mode result: %+v", result)
	}
	if _, ok := result["high_dose_advisory"]; ok {
		t.Fatalf("advisory present below threshold: %+v", result)
	}

	id := created["session_id"].(string)
	res, stored := getJSON(t, ts.URL+"/v1/sessions/"+id)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET session status = %d", res.StatusCode)
	}
	if stored["status"] != "active" || stored["current_mode"] != "perspective_shift" {
		t.Fatalf("unexpected stored session: %+v", stored)
	}
}

func TestCallToolUsesDefaultOwner(t *testing.T) {
	ts := newTestServer(t)

	res, status := postTool(t, ts, "session_status", "", "{}")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("session_status status = %d", res.StatusCode)
	}
	if status["owner"] != "default-owner" {
		t.Fatalf("owner = %v, want default-owner", status["owner"])
	}
}

func TestCallToolErrors(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"activate_everything", "{}", http.StatusNotFound, "unknown_tool"},
		{"adjust_dose", `{"new_dose":"high"}`, http.StatusBadRequest, "invalid_arguments"},
		{"initialize_session", `{"dose":100,"mood":"great"}`, http.StatusBadRequest, "invalid_arguments"},
		{"initialize_session", `not json`, http.StatusBadRequest, "invalid_arguments"},
		{"initialize_session", `{}`, http.StatusBadRequest, "invalid_arguments"},
		{"adjust_dose", `{}`, http.StatusBadRequest, "invalid_arguments"},
	}
	for _, tc := range cases {
		res, payload := postTool(t, ts, tc.name, "", tc.body)
		if res.StatusCode != tc.status || payload["code"] != tc.code {
			t.Fatalf("%s %s = %d %v, want %d %s", tc.name, tc.body, res.StatusCode, payload["code"], tc.status, tc.code)
		}
	}
}

func TestGetUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	res, payload := getJSON(t, ts.URL+"/v1/sessions/missing")
	if res.StatusCode != http.StatusNotFound || payload["code"] != "session_not_found" {
		t.Fatalf("GET missing session = %d %+v", res.StatusCode, payload)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	postTool(t, ts, "session_status", "", "")

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer res.Body.Close()
	var body bytes.Buffer
	if _, err := body.ReadFrom(res.Body); err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(body.String(), "test_httpapi_tool_calls_total") {
		t.Fatalf("metrics output missing tool_calls_total")
	}
}

func TestToolsWebSocket(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/tools/ws?owner_id=ada"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ready map[string]any
	if err := conn.ReadJSON(&ready); err != nil {
		t.Fatalf("read ready: %v", err)
	}
	if ready["type"] != "system_event" || ready["detail"] != "local" {
		t.Fatalf("unexpected ready event: %+v", ready)
	}

	call := map[string]any{
		"type":      "tool_call",
		"call_id":   "c1",
		"name":      "initialize_session",
		"arguments": map[string]any{"dose": 420},
	}
	if err := conn.WriteJSON(call); err != nil {
		t.Fatalf("write tool_call: %v", err)
	}
	var reply map[string]any
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read tool_result: %v", err)
	}
	if reply["type"] != "tool_result" || reply["call_id"] != "c1" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	result := reply["result"].(map[string]any)
	if result["owner"] != "ada" || result["high_dose_advisory"] == nil {
		t.Fatalf("unexpected result: %+v", result)
	}

	if err := conn.WriteJSON(map[string]any{"type": "tool_call", "call_id": "c2", "name": "nope"}); err != nil {
		t.Fatalf("write bad tool_call: %v", err)
	}
	var failure map[string]any
	if err := conn.ReadJSON(&failure); err != nil {
		t.Fatalf("read error_event: %v", err)
	}
	if failure["type"] != "error_event" || failure["code"] != "unknown_tool" || failure["call_id"] != "c2" {
		t.Fatalf("unexpected failure: %+v", failure)
	}
}

type unavailableStore struct {
	*session.InMemoryStore
}

func (unavailableStore) GetActiveForOwner(context.Context, string) (*session.Session, error) {
	return nil, &pgconn.PgError{Code: "08006", Message: "connection failure"}
}

func TestCallToolTransientStoreFailure(t *testing.T) {
	store := unavailableStore{session.NewInMemoryStore()}
	sessions := lifecycle.NewService(store)
	catalog := tools.NewCatalog(sessions, tools.WithDefaultOwner("ada"))
	ts := httptest.NewServer(New(config.Config{}, catalog, sessions, "remote", nil, nil).Router())
	defer ts.Close()

	res, payload := postTool(t, ts, "session_status", "", "")
	if res.StatusCode != http.StatusServiceUnavailable || payload["code"] != "tool_failed" {
		t.Fatalf("session_status = %d %+v, want 503 tool_failed", res.StatusCode, payload)
	}
	if res.Header.Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

type failingStore struct {
	*session.InMemoryStore
}

func (failingStore) GetActiveForOwner(context.Context, string) (*session.Session, error) {
	return nil, errors.New("disk on fire")
}

func TestCallToolPermanentStoreFailure(t *testing.T) {
	store := failingStore{session.NewInMemoryStore()}
	sessions := lifecycle.NewService(store)
	catalog := tools.NewCatalog(sessions, tools.WithDefaultOwner("ada"))
	ts := httptest.NewServer(New(config.Config{}, catalog, sessions, "remote", nil, nil).Router())
	defer ts.Close()

	res, payload := postTool(t, ts, "session_status", "", "")
	if res.StatusCode != http.StatusInternalServerError || payload["code"] != "tool_failed" {
		t.Fatalf("session_status = %d %+v, want 500 tool_failed", res.StatusCode, payload)
	}
	if got := res.Header.Get("Retry-After"); got != "" {
		t.Fatalf("Retry-After = %q, want none", got)
	}
}
