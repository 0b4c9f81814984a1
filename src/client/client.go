// Package client talks to the chat API and mirrors the server-owned
// conversation history.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sliitlabs/neuroai/src/llm"
)

// ErrEmptyMessage indicates Send was called with a blank message. No
// request is made in that case.
var ErrEmptyMessage = errors.New("message is empty")

const defaultTimeout = 2 * time.Minute

// Client posts chat messages to a Neuro AI server and keeps a local copy of
// the history the server returns. It is not safe for concurrent Send calls;
// the console loop issues one request at a time.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	history []llm.Message
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "chat_client"),
	}
}

type sendRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

type sendResponse struct {
	Response string        `json:"response"`
	History  []llm.Message `json:"history"`
	Error    string        `json:"error"`
}

// Send posts message together with the current history. On success the
// local history is replaced with the server's version and the assistant
// reply is returned. On failure the local history is left untouched.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	body, err := json.Marshal(sendRequest{Message: message, History: c.history})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not reach the server: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var payload sendResponse
	parseErr := json.Unmarshal(data, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || parseErr != nil {
		if parseErr == nil && payload.Error != "" {
			return "", errors.New(payload.Error)
		}
		return "", fmt.Errorf("unexpected error (status %d)", resp.StatusCode)
	}

	c.history = payload.History
	c.logger.Debug("exchange complete", "turns", len(c.history))
	return payload.Response, nil
}

// History returns a copy of the mirrored conversation.
func (c *Client) History() []llm.Message {
	return llm.CloneHistory(c.history)
}

// Reset clears the mirrored conversation.
func (c *Client) Reset() {
	c.history = nil
}
