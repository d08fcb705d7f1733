package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// DefaultClaudeModel is used when no model override is configured.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeProvider implements the Provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client      *anthropic.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewClaudeProvider creates a new Claude provider
func NewClaudeProvider(apiKey, model string, temperature float64, logger *zap.Logger, opts ...option.RequestOption) *ClaudeProvider {
	if model == "" {
		model = DefaultClaudeModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &ClaudeProvider{
		client:      &client,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Complete sends one system+user exchange and returns the first text block
func (p *ClaudeProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   req.MaxTokens,
		Temperature: anthropic.Float(p.temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	if resp.StopReason == anthropic.StopReasonMaxTokens {
		p.logger.Warn("Claude response truncated at token budget", zap.Int64("max_tokens", req.MaxTokens))
	}

	// Extract text content
	for _, block := range resp.Content {
		if block.Type == "text" {
			p.logger.Debug("Claude response",
				zap.Int("size", len(block.Text)),
				zap.Int64("tokens_in", resp.Usage.InputTokens),
				zap.Int64("tokens_out", resp.Usage.OutputTokens))
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("empty response from Claude")
}
