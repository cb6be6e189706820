// Package llm wraps calls to an OpenAI-compatible chat-completions API.
// The adapter sends one fully rendered prompt per logical pipeline step and
// returns the raw text response; it performs no retries of its own.
package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Completer is the interface orchestrators depend on. The concrete Client
// talks to the upstream API; tests substitute a mock.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Result, error)
}

// Result carries the raw model output together with reported token usage
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Config holds configuration for creating an LLM client
type Config struct {
	APIKey    string
	BaseURL   string // e.g. "https://api.openai.com/v1"
	Model     string
	MaxTokens int
}

// Client provides access to OpenAI-compatible model endpoints
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewClient creates a new LLM client
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, &Error{Kind: KindUpstream, Message: "model is required"}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends a single chat completion request and returns the raw text.
// Failures are classified into the package's error taxonomy; cancellation
// and deadlines come from ctx.
func (c *Client) Complete(ctx context.Context, prompt string) (*Result, error) {
	slog.Debug("llm request",
		"model", c.model,
		"prompt_chars", len(prompt),
	)

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Error("llm request failed",
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, Classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindUpstream, Message: "no choices in model response"}
	}

	slog.Info("llm request completed",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
