package llm

import "context"

// Provider is implemented by each upstream model API (OpenAI, Anthropic,
// Google Gemini). A provider turns a conversation history into a single
// assistant reply. Implementations make exactly one HTTP request per call;
// there is no retry layer.
type Provider interface {
	// Name returns the registry key for the provider ("openai", ...).
	Name() string

	// Generate produces the assistant reply for the given history.
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}
