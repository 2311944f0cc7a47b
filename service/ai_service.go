package service

import (
	"context"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/types"
)

// TokenUsage is the token accounting reported by a generation backend.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// AIService is a single-shot generative text backend.
type AIService interface {
	ModelVersion() string
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, TokenUsage, error)
}

// NewAIService selects the generation backend at construction time.
func NewAIService(cfg config.GenerationConfig) (AIService, error) {
	switch cfg.Backend {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			return nil, types.ConfigurationErrorf("openai generation backend selected but OPENAI_API_KEY is not set")
		}
		return NewOpenAIService(cfg.Endpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, types.ConfigurationErrorf("gemini generation backend selected but GEMINI_API_KEY is not set")
		}
		return NewGeminiService(cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, types.ConfigurationErrorf("unknown generation backend %q", cfg.Backend)
	}
}
