package openai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMissingAPIKey   = errors.New("openai: api key is not configured")
	ErrEmptyPrompt     = errors.New("openai: empty prompt")
	ErrNoChoices       = errors.New("openai: no choices returned")
	ErrUpstream        = errors.New("openai: upstream unavailable")
	ErrRejected        = errors.New("openai: request rejected")
	ErrUnreadableImage = errors.New("openai: receipt could not be parsed")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("openai: api error (%d): %s", e.StatusCode, e.Message)
}

// Is classifies throttling and server errors as ErrUpstream and every other
// status as ErrRejected.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	case ErrRejected:
		return e.StatusCode != http.StatusTooManyRequests && e.StatusCode < 500
	}
	return false
}
