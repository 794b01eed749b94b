package search

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned before any request when no key is configured.
	ErrMissingAPIKey = errors.New("search: missing API key")

	// ErrUnauthorized means the upstream rejected the key or the model.
	ErrUnauthorized = errors.New("search: unauthorized")

	// ErrQuotaExceeded means the upstream rate limited the request.
	ErrQuotaExceeded = errors.New("search: quota exceeded")

	// ErrUpstream covers every other upstream failure.
	ErrUpstream = errors.New("search: upstream failure")
)

// User-facing messages, one per error kind.
const (
	MessageAuth  = "AUTH ERROR: Inizializzare chiave API per ricerca web."
	MessageQuota = "QUOTA ERROR: Limite richieste raggiunto."
	MessageLink  = "LINK ERROR: Telemetria non disponibile."
)

// StatusError wraps an upstream failure with its HTTP status.
type StatusError struct {
	kind       error
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// ClassifyStatus maps an HTTP status to one of the sentinel errors. 404 is
// treated as an auth problem since Gemini answers "Requested entity was not
// found" when the key cannot see the model.
func ClassifyStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrQuotaExceeded
	default:
		return ErrUpstream
	}
}

// NewStatusError builds a classified error for a failed upstream response.
func NewStatusError(status int, body string) error {
	return &StatusError{kind: ClassifyStatus(status), StatusCode: status, Body: body}
}

// UserMessage returns the Italian message shown for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrUnauthorized):
		return MessageAuth
	case errors.Is(err, ErrQuotaExceeded):
		return MessageQuota
	default:
		return MessageLink
	}
}

// HTTPStatus maps err to the status the API layer responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
