package config

// Retrieval defaults. Chunking follows the ingestion pipeline's original
// tuning: 600-word chunks with a 120-word overlap, three excerpts per
// answer.
const (
	DefaultTopK           = 3
	DefaultChunkSize      = 600
	DefaultChunkOverlap   = 120
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Server defaults.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8750
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Providers: map[string]ProviderConfig{
			"openai":    {},
			"anthropic": {},
			"google":    {},
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Retrieval: RetrievalConfig{
			TopK:           DefaultTopK,
			ChunkSize:      DefaultChunkSize,
			ChunkOverlap:   DefaultChunkOverlap,
			EmbeddingModel: DefaultEmbeddingModel,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
