// Package llm wraps the OpenAI-compatible chat completion endpoint used for
// itinerary generation, chat and preference extraction.
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"greentrip/internal/common/config"
	"greentrip/internal/common/logger"
)

// Completer is the slice of the client the generation components depend on.
// Tests substitute a canned implementation.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client calls a chat completion endpoint. BaseURL override supports
// self-hosted gateways that speak the OpenAI wire format.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float64
	configured  bool
	log         logger.Logger
}

func NewClient(cfg config.LLMConfig, log logger.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		configured:  cfg.APIKey != "",
		log:         log.With(map[string]interface{}{"component": "llm"}),
	}
}

// Configured reports whether an API key is present. When false, callers use
// their deterministic fallback paths.
func (c *Client) Configured() bool {
	return c.configured
}

// Complete sends one system+user exchange and returns the raw assistant text
// with any markdown code fences stripped.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: float32(c.temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return StripFences(resp.Choices[0].Message.Content), nil
}

// StripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
