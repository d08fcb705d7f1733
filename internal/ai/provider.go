package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by every call when no credential is configured.
var ErrNotConfigured = errors.New("suggestion service not configured")

// Request is one generation call.
type Request struct {
	System    string
	User      string
	MaxTokens int64
}

// Provider defines the interface for the generative text service
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Options selects and configures a provider
type Options struct {
	Name         string
	Model        string
	AnthropicKey string
	OpenAIKey    string
	Temperature  float64
	Logger       *zap.Logger
}

// NewProvider creates a provider based on the provider name. A provider
// without a credential is returned as Disabled rather than as an error.
func NewProvider(opts Options) (Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Name)) {
	case "", "claude", "anthropic":
		if opts.AnthropicKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set; suggestions fall back to defaults")
			return Disabled{Reason: "Anthropic API key not configured"}, nil
		}
		return NewClaudeProvider(opts.AnthropicKey, opts.Model, opts.Temperature, logger), nil
	case "openai", "gpt":
		if opts.OpenAIKey == "" {
			logger.Warn("OPENAI_API_KEY not set; suggestions fall back to defaults")
			return Disabled{Reason: "OpenAI API key not configured"}, nil
		}
		return NewOpenAIProvider(opts.OpenAIKey, opts.Model, opts.Temperature, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", opts.Name)
	}
}

// Disabled is the provider used when the service has no credential. It
// never touches the network.
type Disabled struct {
	Reason string
}

// Complete always fails with ErrNotConfigured.
func (d Disabled) Complete(ctx context.Context, req Request) (string, error) {
	if d.Reason == "" {
		return "", ErrNotConfigured
	}
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, d.Reason)
}
