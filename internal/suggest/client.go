// Package suggest drives the generative text service: batched remediation
// suggestions for audit findings and single-page copy rewrites.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/ai"
	"github.com/v0xg/seoaudit/internal/compliance"
	"github.com/v0xg/seoaudit/internal/issues"
)

// Default token budgets.
const (
	DefaultBatchMaxTokens int64 = 4000
	DefaultItemMaxTokens  int64 = 1000
)

// Options configures a Client.
type Options struct {
	Policy         *compliance.Policy
	BatchMaxTokens int64
	ItemMaxTokens  int64
	Logger         *zap.Logger
}

// Client formats category prompts, calls the provider and maps the answers
// back onto the records.
type Client struct {
	provider       ai.Provider
	policy         *compliance.Policy
	batchMaxTokens int64
	itemMaxTokens  int64
	logger         *zap.Logger
}

// NewClient creates a client over provider.
func NewClient(provider ai.Provider, opts Options) *Client {
	if provider == nil {
		provider = ai.Disabled{}
	}
	if opts.BatchMaxTokens <= 0 {
		opts.BatchMaxTokens = DefaultBatchMaxTokens
	}
	if opts.ItemMaxTokens <= 0 {
		opts.ItemMaxTokens = DefaultItemMaxTokens
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		provider:       provider,
		policy:         opts.Policy,
		batchMaxTokens: opts.BatchMaxTokens,
		itemMaxTokens:  opts.ItemMaxTokens,
		logger:         opts.Logger,
	}
}

// Suggest fills SuggestedFix on every record of batch, in place, and returns
// the batch. Items the service does not answer receive the static default.
func (c *Client) Suggest(ctx context.Context, category issues.Category, batch []issues.Record) []issues.Record {
	if len(batch) == 0 {
		return batch
	}
	descriptor := category.Descriptor()

	response, err := c.provider.Complete(ctx, ai.Request{
		System:    withPolicy(c.policy.Instruction(), batchSystemPrompt),
		User:      buildBatchPrompt(category, batch),
		MaxTokens: c.batchMaxTokens,
	})
	if err != nil {
		level := c.logger.Warn
		if errors.Is(err, ai.ErrNotConfigured) {
			level = c.logger.Debug
		}
		level("suggestion service unavailable, using defaults",
			zap.String("category", category.String()), zap.Int("items", len(batch)), zap.Error(err))
	}

	values, parseErr := ParseSuggestions(response, descriptor.ResponseField)
	if parseErr != nil && err == nil {
		c.logger.Warn("suggestion response unparseable, using defaults",
			zap.String("category", category.String()), zap.Int("items", len(batch)), zap.Error(parseErr))
	}

	missing := c.apply(batch, values, descriptor.Literal)
	if parseErr == nil && missing > 0 {
		c.logger.Info("suggestion response incomplete",
			zap.String("category", category.String()), zap.Int("items", len(batch)), zap.Int("defaulted", missing))
	}
	return batch
}

// apply is the single defaulting rule: an index with a value gets it, every
// other record gets its default. A nil map defaults the whole batch. Literal
// values bypass the phrasing policy.
func (c *Client) apply(batch []issues.Record, values map[int]string, literal bool) int {
	missing := 0
	for i := range batch {
		if value, ok := values[i+1]; ok {
			if !literal {
				value = c.policy.Apply(value)
			}
			batch[i].SuggestedFix = value
			continue
		}
		batch[i].SuggestedFix = batch[i].DefaultFix()
		missing++
	}
	return missing
}

// ParseSuggestions decodes a service response into index -> value. Only the
// numeric index correlates answers with items; response order is ignored. The
// first answer for a repeated index wins. Items with no usable value are
// simply absent from the map.
func ParseSuggestions(response, field string) (map[int]string, error) {
	if strings.TrimSpace(response) == "" {
		return nil, errors.New("empty response")
	}

	var items []map[string]any
	if err := ai.DecodeJSON(response, '[', ']', &items); err != nil {
		return nil, err
	}

	values := make(map[int]string, len(items))
	for _, item := range items {
		index, ok := parseIndex(item["index"])
		if !ok {
			continue
		}
		value, ok := item[field].(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if _, seen := values[index]; seen {
			continue
		}
		values[index] = strings.TrimSpace(value)
	}
	return values, nil
}

func parseIndex(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v < 1 || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// MetadataRewrite is a proposed title tag and meta description.
type MetadataRewrite struct {
	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
}

// OnPageRewrite is a proposed H1 and introductory paragraph.
type OnPageRewrite struct {
	H1      string `json:"h1"`
	Content string `json:"content"`
}

// RewriteMetadata asks for a new title and meta description. Any failure
// yields empty strings.
func (c *Client) RewriteMetadata(ctx context.Context, url, currentTitle string, keywords []string) MetadataRewrite {
	var rewrite MetadataRewrite
	prompt := fmt.Sprintf(metadataUserPrompt, url, currentTitle, strings.Join(keywords, ", "))
	if !c.complete(ctx, "metadata", prompt, &rewrite) {
		return MetadataRewrite{}
	}
	return MetadataRewrite{
		Title:           c.policy.Apply(strings.TrimSpace(rewrite.Title)),
		MetaDescription: c.policy.Apply(strings.TrimSpace(rewrite.MetaDescription)),
	}
}

// RewriteOnPage asks for a new H1 and intro paragraph targeting keyword. Any
// failure yields empty strings.
func (c *Client) RewriteOnPage(ctx context.Context, url, currentH1, currentContent, keyword string) OnPageRewrite {
	var rewrite OnPageRewrite
	prompt := fmt.Sprintf(onPageUserPrompt, keyword, url, currentH1, currentContent)
	if !c.complete(ctx, "onpage", prompt, &rewrite) {
		return OnPageRewrite{}
	}
	return OnPageRewrite{
		H1:      c.policy.Apply(strings.TrimSpace(rewrite.H1)),
		Content: c.policy.Apply(strings.TrimSpace(rewrite.Content)),
	}
}

func (c *Client) complete(ctx context.Context, operation, prompt string, target any) bool {
	response, err := c.provider.Complete(ctx, ai.Request{
		System:    withPolicy(c.policy.Instruction(), copywriterSystemPrompt),
		User:      prompt,
		MaxTokens: c.itemMaxTokens,
	})
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			c.logger.Warn("rewrite failed", zap.String("operation", operation), zap.Error(err))
		}
		return false
	}
	if err := ai.DecodeJSON(response, '{', '}', target); err != nil {
		c.logger.Warn("rewrite response unparseable", zap.String("operation", operation), zap.Error(err))
		return false
	}
	return true
}
