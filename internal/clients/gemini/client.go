package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-pro-preview"
)

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Gemini generateContent endpoint with Google Search
// grounding enabled.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
	httpClient  HTTPDoer
}

// NewClient creates a Gemini client with a 60s timeout.
func NewClient(apiKey, model string) *Client {
	return NewClientWithHTTPDoer(apiKey, DefaultBaseURL, &http.Client{Timeout: 60 * time.Second}).WithModel(model)
}

// NewClientWithHTTPDoer creates a client against baseURL using doer.
func NewClientWithHTTPDoer(apiKey, baseURL string, doer HTTPDoer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: doer,
	}
}

// WithModel overrides the model name; empty keeps the default.
func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

// WithTemperature sets the sampling temperature sent with every request.
func (c *Client) WithTemperature(t float32) *Client {
	c.temperature = &t
	return c
}

// Generate runs one grounded completion and maps grounding chunks to sources.
func (c *Client) Generate(ctx context.Context, prompt string) (*search.Answer, error) {
	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
	}
	if c.temperature != nil {
		req.GenerationConfig = &generationConfig{Temperature: c.temperature}
	}

	var resp generateResponse
	if err := c.post(ctx, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return &search.Answer{Sources: []search.Source{}}, nil
	}
	return processCandidate(resp.Candidates[0]), nil
}

// HealthCheck sends a one-token request without grounding.
func (c *Client) HealthCheck(ctx context.Context) error {
	one := 1
	req := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: "Test"}}}},
		GenerationConfig: &generationConfig{MaxOutputTokens: &one},
	}
	if err := c.post(ctx, req, &generateResponse{}); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, body generateRequest, out *generateResponse) error {
	if c.apiKey == "" {
		return search.ErrMissingAPIKey
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", search.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return search.NewStatusError(resp.StatusCode, errorMessage(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", search.ErrUpstream, err)
	}
	return nil
}

func processCandidate(cand candidate) *search.Answer {
	var text strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
	}

	sources := []search.Source{}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			sources = append(sources, search.NewSource(chunk.Web.Title, chunk.Web.URI))
		}
	}

	return &search.Answer{Text: text.String(), Sources: sources}
}

// errorMessage extracts error.message from a Google API error body, falling
// back to the raw body.
func errorMessage(raw []byte) string {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
