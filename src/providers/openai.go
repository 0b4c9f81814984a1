package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/sliitlabs/neuroai/src/llm"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiDefaultModel   = "gpt-4o-mini"
)

var _ llm.Provider = (*OpenAI)(nil)

// OpenAI is a client for the OpenAI chat completions API.
type OpenAI struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configures a provider client. Zero values fall back to the
// provider's defaults and the conventional environment variables.
type Options struct {
	Model   string
	APIKey  string
	BaseURL string
	Logger  *slog.Logger
}

// NewOpenAI creates an OpenAI provider. The API key comes from opts or the
// OPENAI_API_KEY environment variable; without one the constructor fails.
func NewOpenAI(opts Options) (*OpenAI, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", llm.ErrMissingAPIKey)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = openaiDefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenAI{
		model:      model,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "openai_client"),
	}, nil
}

// Name implements llm.Provider.
func (p *OpenAI) Name() string { return "openai" }

type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements llm.Provider.
func (p *OpenAI) Generate(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	logger := p.logger.With("method", "Generate", "model", p.model)
	logger.Debug("sending chat completion request", "turns", len(messages))

	payload := openaiRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	body, err := postJSON(ctx, p.httpClient, logger, p.Name(), p.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return "", err
	}

	var result openaiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", llm.ErrEmptyResponse)
	}
	return result.Choices[0].Message.Content, nil
}
