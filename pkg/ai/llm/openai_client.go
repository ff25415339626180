package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI API client. It implements
// domain.TextGenerator for the personalization adapter.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	log         logger.Logger
}

// Config for OpenAI client
type Config struct {
	APIKey      string
	Model       string        // default: gpt-4o
	Temperature float32       // default: 0.7
	MaxTokens   int           // default: 1000
	Timeout     time.Duration // default: 30s, upper bound per generation call
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg Config, log logger.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}

	return &OpenAIClient{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

// Generate sends a single-prompt completion request and returns the
// generated text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		c.log.Warn("openai completion failed", "error", err, "duration", duration.String())
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	c.log.Debug("openai completion finished",
		"tokens", resp.Usage.TotalTokens,
		"duration", duration.String(),
		"finish_reason", string(resp.Choices[0].FinishReason),
	)

	return resp.Choices[0].Message.Content, nil
}
