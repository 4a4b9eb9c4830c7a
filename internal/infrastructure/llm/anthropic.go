package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"PapersDigest/internal/config"
	"PapersDigest/internal/domain"
	"PapersDigest/internal/ports"
)

// AnthropicCompleter implements ports.Completer over the Messages API.
type AnthropicCompleter struct {
	client      *anthropic.Client
	model       anthropic.Model
	temperature float64
}

var _ ports.Completer = (*AnthropicCompleter)(nil)

// NewAnthropicCompleter builds a client from configuration. An empty key yields ErrNoCredential.
func NewAnthropicCompleter(cfg config.AIConfig, opts ...option.RequestOption) (*AnthropicCompleter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrNoCredential
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	reqOpts = append(reqOpts, opts...)

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicCompleter{
		client:      &client,
		model:       anthropic.Model(cfg.Model),
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends prompt as a single user turn and returns the first text block.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %w", domain.ErrModelCall, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
