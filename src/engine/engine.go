// Package engine turns a conversation history into an assistant reply,
// injecting retrieved lecture context when the document store has content.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sliitlabs/neuroai/src/docstore"
	"github.com/sliitlabs/neuroai/src/llm"
	"github.com/sliitlabs/neuroai/src/providers"
)

// ErrEmptyPrompt indicates a blank prompt was submitted.
var ErrEmptyPrompt = errors.New("prompt is empty")

// ErrNoUserMessage indicates the history holds nothing to respond to.
var ErrNoUserMessage = errors.New("conversation history contains no user message")

const defaultConversationID = "default"

// Engine generates assistant replies through the configured providers and
// tracks per-conversation history for the CLI.
type Engine struct {
	registry *providers.Registry
	docs     *docstore.Store
	logger   *slog.Logger

	systemPrompt string
	temperature  *float64
	maxTokens    *int
	topK         int

	mu            sync.Mutex
	conversations map[string][]llm.Message
}

// Options configures an Engine. Docs is optional; without it no retrieval
// happens and only SystemPrompt (if set) steers the model.
type Options struct {
	Docs         *docstore.Store
	Logger       *slog.Logger
	SystemPrompt string
	Temperature  *float64
	MaxTokens    *int
	TopK         int
}

// New creates an Engine on top of registry.
func New(registry *providers.Registry, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:      registry,
		docs:          opts.Docs,
		logger:        logger.With("component", "engine"),
		systemPrompt:  opts.SystemPrompt,
		temperature:   opts.Temperature,
		maxTokens:     opts.MaxTokens,
		topK:          opts.TopK,
		conversations: make(map[string][]llm.Message),
	}
}

// RespondOptions selects the provider and generation knobs for one call.
// Zero values fall back to the engine's configuration.
type RespondOptions struct {
	Provider    string
	Temperature *float64
	MaxTokens   *int
}

// Respond generates a reply to the latest user message in history. The
// history itself is never modified; callers own appending the turns.
func (e *Engine) Respond(ctx context.Context, history []llm.Message, opts RespondOptions) (string, error) {
	history = llm.SanitizeHistory(history)
	query := llm.LastUserMessage(history)
	if query == "" {
		return "", ErrNoUserMessage
	}

	name, err := e.registry.Resolve(opts.Provider)
	if err != nil {
		return "", err
	}
	provider, err := e.registry.Get(name)
	if err != nil {
		return "", err
	}

	messages := llm.CloneHistory(history)
	if system := e.systemTurn(ctx, query); system != "" {
		messages = append([]llm.Message{{Role: llm.RoleSystem, Content: system}}, messages...)
	}

	genOpts := llm.GenerateOptions{
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}
	if opts.Temperature != nil {
		genOpts.Temperature = opts.Temperature
	}
	if opts.MaxTokens != nil {
		genOpts.MaxTokens = opts.MaxTokens
	}

	e.logger.Debug("generating response", "provider", name, "turns", len(messages))
	text, err := provider.Generate(ctx, messages, genOpts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

// systemTurn builds the system prompt for one exchange. Retrieval failures
// degrade to the configured prompt so a broken embeddings key does not take
// the chat down with it.
func (e *Engine) systemTurn(ctx context.Context, query string) string {
	if e.docs == nil {
		return e.systemPrompt
	}

	ok, err := e.docs.HasContent(ctx)
	if err != nil {
		e.logger.Warn("could not check document store", "error", err)
		return e.systemPrompt
	}
	if !ok {
		return e.systemPrompt
	}

	results, err := e.docs.Search(ctx, query, e.topK)
	if err != nil {
		e.logger.Warn("document retrieval failed", "error", err)
		return e.systemPrompt
	}
	if len(results) == 0 {
		return e.systemPrompt
	}

	chunks := make([]docstore.Chunk, len(results))
	for i, res := range results {
		chunks[i] = res.Chunk
	}
	e.logger.Debug("retrieved context", "chunks", len(chunks))
	return docstore.BuildSystemPrompt(chunks)
}

// ChatOptions configures one Chat exchange.
type ChatOptions struct {
	// ConversationID selects the tracked conversation; empty means the
	// default one.
	ConversationID string
	Provider       string
	Temperature    *float64
	MaxTokens      *int
}

// Chat appends prompt to the tracked conversation, generates a reply, and
// appends that too. On failure the conversation is left exactly as it was,
// so retrying the same prompt does not duplicate the user turn.
func (e *Engine) Chat(ctx context.Context, prompt string, opts ChatOptions) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	id := opts.ConversationID
	if id == "" {
		id = defaultConversationID
	}

	e.mu.Lock()
	history := llm.CloneHistory(e.conversations[id])
	e.mu.Unlock()

	history = append(history, llm.Message{Role: llm.RoleUser, Content: prompt})
	text, err := e.Respond(ctx, history, RespondOptions{
		Provider:    opts.Provider,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.conversations[id] = append(history, llm.Message{Role: llm.RoleAssistant, Content: text})
	e.mu.Unlock()
	return text, nil
}

// History returns a copy of the tracked conversation.
func (e *Engine) History(conversationID string) []llm.Message {
	if conversationID == "" {
		conversationID = defaultConversationID
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return llm.CloneHistory(e.conversations[conversationID])
}

// Reset forgets one tracked conversation.
func (e *Engine) Reset(conversationID string) {
	if conversationID == "" {
		conversationID = defaultConversationID
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.conversations, conversationID)
}

// ResetAll forgets every tracked conversation.
func (e *Engine) ResetAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conversations = make(map[string][]llm.Message)
}

// Providers returns the registered provider names.
func (e *Engine) Providers() []string {
	return e.registry.Names()
}

// DefaultProvider returns the name of the provider used when none is
// selected explicitly.
func (e *Engine) DefaultProvider() string {
	return e.registry.Default().Name()
}
