// Package insight asks a language model for commentary on an analytics summary.
package insight

import (
	"context"
	"fmt"
	"strings"
)

// Providers.
const (
	ProviderOllama   = "ollama"
	ProviderOpenAI   = "openai"
	ProviderLMStudio = "lmstudio"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends chat messages to a model.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// NewClient creates a Client for provider. An empty provider means Ollama.
func NewClient(provider, model, baseURL string) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderOpenAI:
		return NewOpenAIClient(model, baseURL)
	case ProviderLMStudio, "lm-studio":
		if baseURL == "" {
			baseURL = defaultLMStudioBaseURL
		}
		return NewOpenAIClient(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
