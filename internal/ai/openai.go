package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultOpenAIModel is used when no model override is configured.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIProvider implements the Provider interface using OpenAI
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string, temperature float64, logger *zap.Logger) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(openai.DefaultConfig(apiKey), model, temperature, logger)
}

// NewOpenAIProviderWithConfig creates an OpenAI provider from a client config,
// e.g. to target a compatible endpoint.
func NewOpenAIProviderWithConfig(config openai.ClientConfig, model string, temperature float64, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Complete sends one system+user exchange and returns the first choice
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: req.System,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: req.User,
				},
			},
			MaxTokens:   int(req.MaxTokens),
			Temperature: float32(p.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		p.logger.Warn("OpenAI response truncated at token budget", zap.Int64("max_tokens", req.MaxTokens))
	}
	p.logger.Debug("OpenAI response",
		zap.Int("size", len(choice.Message.Content)),
		zap.Int("tokens_in", resp.Usage.PromptTokens),
		zap.Int("tokens_out", resp.Usage.CompletionTokens))

	return choice.Message.Content, nil
}
