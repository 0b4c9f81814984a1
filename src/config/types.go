// Package config loads and validates the Neuro AI configuration from JSON
// files, environment variables, and optional keys.env/.env files.
package config

// Config represents the complete configuration for Neuro AI.
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Providers holds per-provider credentials and overrides, keyed by
	// provider name ("openai", "anthropic", "google").
	Providers map[string]ProviderConfig `json:"providers,omitempty"`

	// Agent holds response-generation settings
	Agent AgentConfig `json:"agent"`

	// Server holds HTTP server settings
	Server ServerConfig `json:"server"`

	// Retrieval holds document store and embedding settings
	Retrieval RetrievalConfig `json:"retrieval"`

	// Data holds storage location settings
	Data DataConfig `json:"data,omitempty"`

	// Logging configuration
	Logging LoggingConfig `json:"logging,omitempty"`
}

// ProviderConfig defines configuration for one model provider.
type ProviderConfig struct {
	// APIKey for the provider; the conventional environment variable is
	// consulted when empty.
	APIKey string `json:"api_key,omitempty"`

	// BaseURL overrides the provider's default API endpoint
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// Model overrides the provider's default model
	Model string `json:"model,omitempty"`

	// Disabled skips the provider even when a key is available
	Disabled bool `json:"disabled,omitempty"`
}

// AgentConfig holds response-generation settings.
type AgentConfig struct {
	// Provider names the default provider; empty means the first one
	// that was successfully configured.
	Provider string `json:"provider,omitempty" validate:"provider"`

	// Temperature for sampling, when set
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the reply length, when set
	MaxTokens *int `json:"max_tokens,omitempty"`

	// SystemPrompt is prepended to every conversation when non-empty
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty" validate:"min=0,max=65535"`
}

// RetrievalConfig holds document store and embedding settings.
type RetrievalConfig struct {
	// TopK is the number of chunks injected into the system prompt
	TopK int `json:"top_k,omitempty" validate:"min=0"`

	// ChunkSize is the chunk length in words
	ChunkSize int `json:"chunk_size,omitempty" validate:"min=0"`

	// ChunkOverlap is the word overlap between neighboring chunks
	ChunkOverlap int `json:"chunk_overlap,omitempty" validate:"min=0"`

	// EmbeddingModel names the OpenAI embedding model
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// DataConfig defines storage location settings.
type DataConfig struct {
	// Directory where the SQLite database and input history live;
	// defaults to the XDG state directory.
	Directory string `json:"directory,omitempty"`
}

// LoggingConfig defines logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" validate:"log_format"`
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Message
}
