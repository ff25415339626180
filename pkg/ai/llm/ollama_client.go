package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/leadpulse/leadpulse/pkg/logger"
)

// NewOllamaClient creates a text generator backed by a local Ollama
// server, which exposes an OpenAI-compatible chat API. Useful for
// development without an OpenAI key.
func NewOllamaClient(baseURL string, cfg Config, log logger.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1"
	}

	clientCfg := openai.DefaultConfig("ollama") // Ollama ignores the key
	clientCfg.BaseURL = baseURL

	c := NewOpenAIClient(cfg, log)
	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}
