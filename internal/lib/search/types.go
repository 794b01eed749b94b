package search

import (
	"context"
	"time"
)

// Default values for grounding sources that arrive without a title or link.
const (
	DefaultSourceTitle = "Sorgente esterna"
	DefaultSourceURI   = "#"
)

// Source is one web page the model grounded its answer on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Answer is the raw model output for one prompt.
type Answer struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Provider turns a prompt into a model answer. Implementations make exactly
// one upstream request per call and never retry.
type Provider interface {
	Generate(ctx context.Context, prompt string) (*Answer, error)

	// HealthCheck verifies the upstream is reachable with the configured key.
	HealthCheck(ctx context.Context) error
}

// ResultCache stores answers keyed by prompt content hash.
type ResultCache interface {
	SetAnswer(contentHash string, answer *Answer, ttl time.Duration) error
	GetAnswer(contentHash string) (*Answer, bool, error)
	IsAnswerCached(contentHash string) bool
}

// NewSource fills in defaults for missing fields.
func NewSource(title, uri string) Source {
	if title == "" {
		title = DefaultSourceTitle
	}
	if uri == "" {
		uri = DefaultSourceURI
	}
	return Source{Title: title, URI: uri}
}
