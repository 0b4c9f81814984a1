// Package providers contains the concrete llm.Provider implementations for
// the OpenAI, Anthropic, and Google Gemini REST APIs, plus a registry that
// routes requests between them.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sliitlabs/neuroai/src/llm"
)

const defaultTimeout = 60 * time.Second

// postJSON marshals payload, performs a single POST, and returns the raw
// body on 200. Non-200 responses are turned into *llm.APIError using the
// upstream error body when it parses. There is deliberately no retry here.
func postJSON(ctx context.Context, client *http.Client, logger *slog.Logger, provider, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("request failed", "provider", provider, "error", err)
		return nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "provider", provider, "status_code", resp.StatusCode)
		return nil, decodeAPIError(provider, resp.StatusCode, data)
	}
	return data, nil
}

// errorEnvelope matches the {"error":{"message":...,"code":...,"type":...}}
// shape shared by the OpenAI and Anthropic error bodies. Gemini nests a
// numeric code but the string fields line up the same way.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func decodeAPIError(provider string, status int, body []byte) error {
	apiErr := &llm.APIError{
		Provider:   provider,
		StatusCode: status,
		Message:    fmt.Sprintf("HTTP %d", status),
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		switch code := envelope.Error.Code.(type) {
		case string:
			apiErr.Code = code
		case float64:
			apiErr.Code = fmt.Sprintf("%d", int(code))
		}
		if apiErr.Code == "" {
			apiErr.Code = envelope.Error.Type
		}
	}
	return apiErr
}
