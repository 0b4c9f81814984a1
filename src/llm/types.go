// Package llm defines the message model and provider abstraction shared by
// every chat surface (HTTP API, console, one-shot prompts).
package llm

// Message roles understood by the chat engine and the API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// KnownRole reports whether role is one of the roles the system accepts.
// Anything else is dropped during history sanitization.
func KnownRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// SanitizeHistory filters a client-supplied history down to well-formed
// turns. Entries with unknown roles or empty content are dropped rather than
// rejected; the server is the authority on what a valid history looks like.
func SanitizeHistory(history []Message) []Message {
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if !KnownRole(m.Role) || m.Content == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// CloneHistory returns a copy the caller can mutate freely.
func CloneHistory(history []Message) []Message {
	out := make([]Message, len(history))
	copy(out, history)
	return out
}

// LastUserMessage returns the content of the most recent user turn, or ""
// when the history has none. Retrieval uses this as the query text.
func LastUserMessage(history []Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// GenerateOptions carries per-request overrides passed down to a provider.
// Nil fields mean "use the provider default".
type GenerateOptions struct {
	Temperature *float64
	MaxTokens   *int
}
