package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sliitlabs/neuroai/src/docstore"
	"github.com/sliitlabs/neuroai/src/llm"
	"github.com/sliitlabs/neuroai/src/providers"
	"github.com/sliitlabs/neuroai/src/storage"
)

type stubProvider struct {
	name  string
	reply string
	err   error

	gotMessages []llm.Message
	gotOpts     llm.GenerateOptions
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	s.gotMessages = messages
	s.gotOpts = opts
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestEngine(t *testing.T, stub *stubProvider, opts Options) *Engine {
	t.Helper()
	registry, err := providers.NewRegistry(stub)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return New(registry, opts)
}

func TestRespondDelegatesToDefaultProvider(t *testing.T) {
	stub := &stubProvider{name: "openai", reply: "a B-tree is a balanced tree"}
	eng := newTestEngine(t, stub, Options{})

	history := []llm.Message{{Role: llm.RoleUser, Content: "what is a B-tree?"}}
	text, err := eng.Respond(context.Background(), history, RespondOptions{})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if text != "a B-tree is a balanced tree" {
		t.Errorf("Respond() = %q", text)
	}
	if len(stub.gotMessages) != 1 {
		t.Errorf("provider received %d messages, want 1", len(stub.gotMessages))
	}
}

func TestRespondNoUserMessage(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	eng := newTestEngine(t, stub, Options{})

	tests := []struct {
		name    string
		history []llm.Message
	}{
		{"empty history", nil},
		{"assistant only", []llm.Message{{Role: llm.RoleAssistant, Content: "hello"}}},
		{"invalid entries dropped", []llm.Message{{Role: "tool", Content: "x"}, {Role: llm.RoleUser, Content: ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.Respond(context.Background(), tt.history, RespondOptions{}); !errors.Is(err, ErrNoUserMessage) {
				t.Errorf("Respond() error = %v, want ErrNoUserMessage", err)
			}
		})
	}
}

func TestRespondUnknownProvider(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	eng := newTestEngine(t, stub, Options{})

	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	if _, err := eng.Respond(context.Background(), history, RespondOptions{Provider: "mistral"}); !errors.Is(err, llm.ErrUnknownProvider) {
		t.Errorf("Respond() error = %v, want ErrUnknownProvider", err)
	}
}

func TestRespondPrependsConfiguredSystemPrompt(t *testing.T) {
	stub := &stubProvider{name: "openai", reply: "ok"}
	eng := newTestEngine(t, stub, Options{SystemPrompt: "answer briefly"})

	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	if _, err := eng.Respond(context.Background(), history, RespondOptions{}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(stub.gotMessages) != 2 || stub.gotMessages[0].Role != llm.RoleSystem {
		t.Fatalf("expected a leading system turn, got %+v", stub.gotMessages)
	}
	if stub.gotMessages[0].Content != "answer briefly" {
		t.Errorf("system turn = %q", stub.gotMessages[0].Content)
	}
}

func TestRespondGenerationOptions(t *testing.T) {
	engineTemp, callTemp := 0.2, 0.9
	stub := &stubProvider{name: "openai", reply: "ok"}
	eng := newTestEngine(t, stub, Options{Temperature: &engineTemp})

	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	if _, err := eng.Respond(context.Background(), history, RespondOptions{}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if stub.gotOpts.Temperature == nil || *stub.gotOpts.Temperature != engineTemp {
		t.Errorf("expected engine temperature %v, got %v", engineTemp, stub.gotOpts.Temperature)
	}

	if _, err := eng.Respond(context.Background(), history, RespondOptions{Temperature: &callTemp}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if stub.gotOpts.Temperature == nil || *stub.gotOpts.Temperature != callTemp {
		t.Errorf("expected call temperature %v, got %v", callTemp, stub.gotOpts.Temperature)
	}
}

type axisEmbedder struct{}

func (axisEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1}
	}
	return out, nil
}

func (axisEmbedder) Model() string { return "fake-embedding-model" }

func TestRespondInjectsRetrievedContext(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	docs := docstore.NewStore(db, axisEmbedder{}, docstore.StoreOptions{})
	path := filepath.Join(t.TempDir(), "lecture.txt")
	if err := os.WriteFile(path, []byte("hash joins build a table in memory"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := docs.IngestFile(context.Background(), path, docstore.IngestOptions{}); err != nil {
		t.Fatalf("IngestFile() error = %v", err)
	}

	stub := &stubProvider{name: "openai", reply: "ok"}
	eng := newTestEngine(t, stub, Options{Docs: docs})

	history := []llm.Message{{Role: llm.RoleUser, Content: "explain hash joins"}}
	if _, err := eng.Respond(context.Background(), history, RespondOptions{}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(stub.gotMessages) != 2 || stub.gotMessages[0].Role != llm.RoleSystem {
		t.Fatalf("expected a leading system turn, got %+v", stub.gotMessages)
	}
	system := stub.gotMessages[0].Content
	if !strings.Contains(system, "Neuro AI") || !strings.Contains(system, "hash joins build a table") {
		t.Errorf("system turn missing retrieved context: %q", system)
	}
}

func TestChatTracksConversation(t *testing.T) {
	stub := &stubProvider{name: "openai", reply: "hello there"}
	eng := newTestEngine(t, stub, Options{})

	text, err := eng.Chat(context.Background(), "  hi  ", ChatOptions{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if text != "hello there" {
		t.Errorf("Chat() = %q", text)
	}

	history := eng.History("")
	if len(history) != 2 {
		t.Fatalf("History() has %d turns, want 2", len(history))
	}
	if history[0].Content != "hi" {
		t.Errorf("user turn = %q, want trimmed prompt", history[0].Content)
	}
	if history[1].Role != llm.RoleAssistant || history[1].Content != "hello there" {
		t.Errorf("assistant turn = %+v", history[1])
	}
}

func TestChatFailureLeavesConversationUntouched(t *testing.T) {
	stub := &stubProvider{name: "openai", err: errors.New("boom")}
	eng := newTestEngine(t, stub, Options{})

	if _, err := eng.Chat(context.Background(), "hi", ChatOptions{}); err == nil {
		t.Fatal("expected error")
	}
	if history := eng.History(""); len(history) != 0 {
		t.Errorf("History() = %+v, want empty after failure", history)
	}
}

func TestChatEmptyPrompt(t *testing.T) {
	stub := &stubProvider{name: "openai"}
	eng := newTestEngine(t, stub, Options{})

	if _, err := eng.Chat(context.Background(), "   ", ChatOptions{}); !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Chat() error = %v, want ErrEmptyPrompt", err)
	}
}

func TestResetForgetsConversation(t *testing.T) {
	stub := &stubProvider{name: "openai", reply: "ok"}
	eng := newTestEngine(t, stub, Options{})

	if _, err := eng.Chat(context.Background(), "hi", ChatOptions{ConversationID: "study"}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	eng.Reset("study")
	if history := eng.History("study"); len(history) != 0 {
		t.Errorf("History() after Reset = %+v", history)
	}
}
