package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOptions configures the chat completion provider.
type OpenAIOptions struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	HTTPClient  *http.Client
}

const systemPrompt = "Sei un assistente di mobilità. Segui rigorosamente il formato richiesto dall'utente."

// openAIProvider implements Provider against any OpenAI compatible endpoint.
type openAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIProvider creates a chat completion provider. A missing key is not
// an error here; every call reports ErrMissingAPIKey instead.
func NewOpenAIProvider(opts OpenAIOptions) Provider {
	if opts.APIKey == "" {
		return &openAIProvider{model: opts.Model}
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &openAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
	}
}

// Generate sends the prompt as a single user turn. OpenAI models have no
// search grounding so the answer carries no sources.
func (p *openAIProvider) Generate(ctx context.Context, prompt string) (*Answer, error) {
	if p.client == nil {
		return nil, ErrMissingAPIKey
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrUpstream)
	}

	return &Answer{
		Text:    resp.Choices[0].Message.Content,
		Sources: []Source{},
	}, nil
}

// HealthCheck makes a minimal completion call.
func (p *openAIProvider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return ErrMissingAPIKey
	}

	_, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Test",
			},
		},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("health check failed: %w", classifyOpenAIError(err))
	}
	return nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{kind: ClassifyStatus(apiErr.HTTPStatusCode), StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{kind: ClassifyStatus(reqErr.HTTPStatusCode), StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}

	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
