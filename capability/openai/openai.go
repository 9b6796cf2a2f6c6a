// Package openai adapts the OpenAI Chat Completions API to the pipeline's
// core.Capability contract. Both operations issue a single non-streaming
// completion built from the shared prompt contracts.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/eduforge/eduforge/capability"
	"github.com/eduforge/eduforge/core"
)

// Options configure the OpenAI capability adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Capability wraps the OpenAI Chat Completions API behind core.Capability.
type Capability struct {
	client *openai.Client
	opts   Options
}

var _ core.Capability = (*Capability)(nil)

// New creates a new OpenAI capability using the official client.
func New(optFns ...func(o *Options)) *Capability {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI capability from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Capability {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 8192,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Capability{client: client, opts: opts}
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
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
