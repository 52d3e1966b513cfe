package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docsearch/internal/domain"
	"docsearch/internal/metrics"
)

// Completer wraps the chat completions API behind the answer generator
// contract: one synchronous call, bounded output, no internal retries.
type Completer struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// NewCompleter creates an OpenAI-compatible completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxAnswerTokens
	}

	return &Completer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    cfg.Logger,
	}
}

// Complete sends one system+user exchange and returns the model's reply.
// Provider failures are wrapped in domain.ErrGeneration with the cause
// preserved; retry policy belongs to the caller's scheduler, not here.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("%w: empty completion response", domain.ErrGeneration)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.model, "ok").Inc()
	return resp.Choices[0].Message.Content, nil
}
