package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sliitlabs/neuroai/src/llm"
)

const (
	embeddingsDefaultBaseURL = "https://api.openai.com/v1"
	embeddingsDefaultModel   = "text-embedding-3-small"
	embeddingsTimeout        = 30 * time.Second
)

// ErrMissingEmbeddingKey indicates the embeddings client has no API key.
var ErrMissingEmbeddingKey = errors.New("missing OPENAI_API_KEY: export your OpenAI API key before ingesting documents")

// Embedder turns batches of text into embedding vectors. The document store
// depends on this interface so tests can supply a deterministic one.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Model() string
}

var _ Embedder = (*EmbeddingClient)(nil)

// EmbeddingClient calls the OpenAI embeddings endpoint.
type EmbeddingClient struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// EmbeddingOptions configures an EmbeddingClient.
type EmbeddingOptions struct {
	Model   string
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// NewEmbeddingClient creates an embeddings client. The key resolution order
// matches the chat providers: explicit option, then OPENAI_API_KEY.
func NewEmbeddingClient(opts EmbeddingOptions) (*EmbeddingClient, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingEmbeddingKey
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = embeddingsDefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = embeddingsDefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EmbeddingClient{
		model:      model,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: embeddingsTimeout},
		logger:     logger.With("component", "embeddings_client"),
	}, nil
}

// Model implements Embedder.
func (c *EmbeddingClient) Model() string { return c.model }

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Embedder. One request per batch, no retry.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	logger := c.logger.With("method", "Embed", "model", c.model)
	logger.Debug("requesting embeddings", "batch_size", len(texts))

	body, err := json.Marshal(embeddingsRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("embeddings request failed", "error", err)
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		apiErr := &llm.APIError{
			Provider:   "openai",
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
		}
		return nil, apiErr
	}

	var result embeddingsResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid JSON from embeddings API: %w", err)
	}

	embeddings := make([][]float64, 0, len(result.Data))
	for _, item := range result.Data {
		if item.Embedding == nil {
			return nil, fmt.Errorf("embeddings API returned an unexpected payload")
		}
		embeddings = append(embeddings, item.Embedding)
	}
	return embeddings, nil
}
