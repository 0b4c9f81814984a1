package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/sliitlabs/neuroai/src/llm"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-3-5-sonnet-20240620"
	anthropicVersion        = "2023-06-01"

	// anthropicDefaultMaxTokens is required by the messages API; requests
	// without a max_tokens value are rejected.
	anthropicDefaultMaxTokens = 1024
)

var _ llm.Provider = (*Anthropic)(nil)

// Anthropic is a client for the Anthropic messages API.
type Anthropic struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAnthropic creates an Anthropic provider. The API key comes from opts or
// the ANTHROPIC_API_KEY environment variable.
func NewAnthropic(opts Options) (*Anthropic, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", llm.ErrMissingAPIKey)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("ANTHROPIC_BASE_URL")
	}
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Anthropic{
		model:      model,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "anthropic_client"),
	}, nil
}

// Name implements llm.Provider.
func (p *Anthropic) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate implements llm.Provider.
//
// The messages API takes system turns as a top-level field, so they are
// lifted out of the history before the request is built.
func (p *Anthropic) Generate(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	logger := p.logger.With("method", "Generate", "model", p.model)
	logger.Debug("sending messages request", "turns", len(messages))

	var system []string
	turns := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}

	maxTokens := anthropicDefaultMaxTokens
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	payload := anthropicRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Messages:    turns,
		Temperature: opts.Temperature,
	}

	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}
	body, err := postJSON(ctx, p.httpClient, logger, p.Name(), p.baseURL+"/messages", headers, payload)
	if err != nil {
		return "", err
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("anthropic: failed to decode response: %w", err)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w", llm.ErrEmptyResponse)
	}
	return text.String(), nil
}
