// Package anthropic adapts the Anthropic Messages API to the pipeline's
// core.Capability contract.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/eduforge/eduforge/capability"
	"github.com/eduforge/eduforge/core"
)

// Options configures the Anthropic capability adapter (temperature, model
// id, max tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Capability wraps the Anthropic Messages API behind core.Capability.
type Capability struct {
	client *anthropic.Client
	opts   Options
}

var _ core.Capability = (*Capability)(nil)

// New creates a new Anthropic capability using the official client.
func New(optFns ...func(o *Options)) *Capability {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   8192,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Capability{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic capability from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Capability {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   8192,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Capability{
		client: client,
		opts:   opts,
	}
}

// AnalyzeContent implements core.Capability.
func (c *Capability) AnalyzeContent(ctx context.Context, text string) (string, error) {
	prompt, err := capability.AnalysisPrompt(text)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, prompt)
}

// GenerateArtifact implements core.Capability.
func (c *Capability) GenerateArtifact(ctx context.Context, req core.ArtifactRequest) (string, error) {
	prompt, err := capability.ArtifactPrompt(req)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, prompt)
}

func (c *Capability) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
