package search

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, ErrUnauthorized, ClassifyStatus(http.StatusUnauthorized))
	assert.Equal(t, ErrUnauthorized, ClassifyStatus(http.StatusForbidden))
	assert.Equal(t, ErrUnauthorized, ClassifyStatus(http.StatusNotFound))
	assert.Equal(t, ErrQuotaExceeded, ClassifyStatus(http.StatusTooManyRequests))
	assert.Equal(t, ErrUpstream, ClassifyStatus(http.StatusBadRequest))
	assert.Equal(t, ErrUpstream, ClassifyStatus(http.StatusServiceUnavailable))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, MessageAuth, UserMessage(ErrMissingAPIKey))
	assert.Equal(t, MessageAuth, UserMessage(NewStatusError(http.StatusForbidden, "")))
	assert.Equal(t, MessageQuota, UserMessage(fmt.Errorf("search: %w", NewStatusError(http.StatusTooManyRequests, "slow down"))))
	assert.Equal(t, MessageLink, UserMessage(ErrUpstream))
	assert.Equal(t, MessageLink, UserMessage(errors.New("dial tcp: connection refused")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrMissingAPIKey))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrQuotaExceeded))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(errors.New("boom")))
}

func TestStatusError_Message(t *testing.T) {
	err := NewStatusError(http.StatusTooManyRequests, "rate limited")
	assert.Equal(t, "search: quota exceeded (status 429): rate limited", err.Error())

	err = NewStatusError(http.StatusInternalServerError, "")
	assert.Equal(t, "search: upstream failure (status 500)", err.Error())
}

func TestNewSource_Defaults(t *testing.T) {
	assert.Equal(t, Source{Title: "Sorgente esterna", URI: "#"}, NewSource("", ""))
	assert.Equal(t, Source{Title: "Trenitalia", URI: "https://www.trenitalia.com"}, NewSource("Trenitalia", "https://www.trenitalia.com"))
}
