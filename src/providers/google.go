package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/sliitlabs/neuroai/src/llm"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-1.5-flash"
)

var _ llm.Provider = (*Gemini)(nil)

// Gemini is a client for the Google Gemini generateContent API.
type Gemini struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGemini creates a Gemini provider. The API key comes from opts or the
// GOOGLE_API_KEY environment variable.
func NewGemini(opts Options) (*Gemini, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("google: %w", llm.ErrMissingAPIKey)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GOOGLE_GEMINI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = geminiDefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gemini{
		model:      model,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", "gemini_client"),
	}, nil
}

// Name implements llm.Provider.
func (p *Gemini) Name() string { return "google" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate implements llm.Provider.
//
// Gemini uses "model" instead of "assistant" for the responder role and
// takes system turns through systemInstruction.
func (p *Gemini) Generate(ctx context.Context, messages []llm.Message, opts llm.GenerateOptions) (string, error) {
	logger := p.logger.With("method", "Generate", "model", p.model)
	logger.Debug("sending generateContent request", "turns", len(messages))

	var system []string
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: m.Role, Parts: []geminiPart{{Text: m.Content}}})
		}
	}

	payload := geminiRequest{Contents: contents}
	if len(system) > 0 {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}}}
	}
	if opts.Temperature != nil || opts.MaxTokens != nil {
		cfg := map[string]any{}
		if opts.Temperature != nil {
			cfg["temperature"] = *opts.Temperature
		}
		if opts.MaxTokens != nil {
			cfg["maxOutputTokens"] = *opts.MaxTokens
		}
		payload.GenerationConfig = cfg
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, url.QueryEscape(p.apiKey))
	body, err := postJSON(ctx, p.httpClient, logger, p.Name(), endpoint, nil, payload)
	if err != nil {
		return "", err
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("google: failed to decode response: %w", err)
	}

	var text strings.Builder
	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("google: %w", llm.ErrEmptyResponse)
	}
	return text.String(), nil
}
