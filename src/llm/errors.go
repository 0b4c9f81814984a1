package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error variables
var (
	// ErrMissingAPIKey indicates a provider was configured without a key.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrEmptyResponse indicates the upstream API returned no usable text.
	ErrEmptyResponse = errors.New("empty response from model API")

	// ErrNoProviders indicates no provider could be built from the
	// configuration or environment.
	ErrNoProviders = errors.New("no providers configured: set OPENAI_API_KEY, ANTHROPIC_API_KEY, or GOOGLE_API_KEY")

	// ErrUnknownProvider indicates a provider name that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
)

// APIError represents an error response from an upstream model API.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s API error %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
