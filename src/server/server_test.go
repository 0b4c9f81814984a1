package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sliitlabs/neuroai/src/engine"
	"github.com/sliitlabs/neuroai/src/llm"
	"github.com/sliitlabs/neuroai/src/providers"
	"github.com/sliitlabs/neuroai/src/storage"
)

type stubProvider struct {
	reply string
	err   error

	gotMessages []llm.Message
}

func (s *stubProvider) Name() string { return "openai" }

func (s *stubProvider) Generate(_ context.Context, messages []llm.Message, _ llm.GenerateOptions) (string, error) {
	s.gotMessages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestServer(t *testing.T, stub *stubProvider, opts Options) *httptest.Server {
	t.Helper()
	registry, err := providers.NewRegistry(stub)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	srv := New(engine.New(registry, engine.Options{}), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postChat(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/chat error = %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func errorField(t *testing.T, payload map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	if err := json.Unmarshal(payload["error"], &msg); err != nil {
		t.Fatalf("decode error field: %v", err)
	}
	return msg
}

func TestChatEmptyMessage(t *testing.T) {
	ts := newTestServer(t, &stubProvider{reply: "unused"}, Options{})

	for _, body := range []string{
		`{"message": "", "history": []}`,
		`{"message": "   ", "history": []}`,
		`{}`,
		`not json at all`,
	} {
		resp, payload := postChat(t, ts, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
		if got := errorField(t, payload); got != "Please provide a prompt for Neuro AI." {
			t.Errorf("body %q: error = %q", body, got)
		}
	}
}

func TestChatSuccessReturnsFullHistory(t *testing.T) {
	stub := &stubProvider{reply: "normalization removes redundancy"}
	ts := newTestServer(t, stub, Options{})

	resp, payload := postChat(t, ts, `{
		"message": "what is normalization?",
		"history": [
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello! how can I help?"}
		]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var text string
	if err := json.Unmarshal(payload["response"], &text); err != nil {
		t.Fatalf("decode response field: %v", err)
	}
	if text != "normalization removes redundancy" {
		t.Errorf("response = %q", text)
	}

	var history []llm.Message
	if err := json.Unmarshal(payload["history"], &history); err != nil {
		t.Fatalf("decode history field: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history has %d turns, want 4", len(history))
	}
	if history[2].Content != "what is normalization?" || history[2].Role != llm.RoleUser {
		t.Errorf("third turn = %+v", history[2])
	}
	if history[3].Role != llm.RoleAssistant || history[3].Content != stub.reply {
		t.Errorf("final turn = %+v", history[3])
	}
}

func TestChatDropsInvalidHistoryEntries(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	ts := newTestServer(t, stub, Options{})

	resp, payload := postChat(t, ts, `{
		"message": "hi",
		"history": [
			"just a string",
			42,
			{"role": "tool", "content": "dropped"},
			{"role": "user", "content": 7},
			{"role": "assistant", "content": "kept"}
		]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var history []llm.Message
	if err := json.Unmarshal(payload["history"], &history); err != nil {
		t.Fatalf("decode history field: %v", err)
	}
	// kept assistant turn + the new user turn + the reply
	if len(history) != 3 {
		t.Fatalf("history = %+v, want 3 turns", history)
	}
	if history[0].Content != "kept" {
		t.Errorf("first turn = %+v", history[0])
	}
}

func TestChatEngineFailure(t *testing.T) {
	ts := newTestServer(t, &stubProvider{err: errors.New("rate limited")}, Options{})

	resp, payload := postChat(t, ts, `{"message": "hi", "history": []}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := errorField(t, payload); !strings.Contains(got, "rate limited") {
		t.Errorf("error = %q", got)
	}
}

func TestChatBodyLimit(t *testing.T) {
	ts := newTestServer(t, &stubProvider{reply: "ok"}, Options{})

	huge := bytes.Repeat([]byte("a"), maxBodyBytes+1024)
	body := `{"message": "` + string(huge) + `", "history": []}`
	resp, _ := postChat(t, ts, body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", resp.StatusCode)
	}
}

func TestIndexServesChatPage(t *testing.T) {
	ts := newTestServer(t, &stubProvider{}, Options{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	page := buf.String()

	// Assistant turns are model output: the page must sanitize the parsed
	// Markdown before inserting it, and typeset math rather than showing
	// raw LaTeX.
	if !strings.Contains(page, "DOMPurify.sanitize(marked.parse(") {
		t.Error("chat page does not sanitize rendered Markdown")
	}
	if !strings.Contains(page, "renderMathInElement") {
		t.Error("chat page does not typeset math in assistant turns")
	}
	for _, src := range []string{"dompurify", "katex"} {
		if !strings.Contains(page, src) {
			t.Errorf("chat page missing %s script", src)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubProvider{}, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("status field = %q", payload["status"])
	}
}

func TestStatsCountsChatRequests(t *testing.T) {
	ts := newTestServer(t, &stubProvider{reply: "ok"}, Options{})

	postChat(t, ts, `{"message": "hi", "history": []}`)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats error = %v", err)
	}
	defer resp.Body.Close()

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.ChatRequests != 1 {
		t.Errorf("ChatRequests = %d, want 1", stats.ChatRequests)
	}
	if len(stats.Providers) != 1 || stats.Providers[0] != "openai" {
		t.Errorf("Providers = %v", stats.Providers)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubProvider{reply: "ok"}, Options{})

	postChat(t, ts, `{"message": "hi", "history": []}`)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "neuroai_chat_requests_total") {
		t.Error("metrics output missing chat request counter")
	}
}

func TestChatPersistsTranscript(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry, err := providers.NewRegistry(&stubProvider{reply: "persisted"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	srv := New(engine.New(registry, engine.Options{}), Options{DB: db})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	postChat(t, ts, `{"message": "remember this", "history": []}`)

	srv.mu.Lock()
	convID := srv.conversationID
	srv.mu.Unlock()
	if convID == "" {
		t.Fatal("expected a transcript conversation to be created")
	}

	messages, err := storage.GetMessagesByConversationID(context.Background(), db.DB(), convID)
	if err != nil {
		t.Fatalf("GetMessagesByConversationID() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(messages))
	}
	if messages[0].Content != "remember this" || messages[1].Content != "persisted" {
		t.Errorf("messages = %+v", messages)
	}
}
