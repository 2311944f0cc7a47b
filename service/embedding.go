package service

import (
	"context"

	"github.com/bizpilot/bizpilot-be/config"
	"github.com/bizpilot/bizpilot-be/types"
)

// EmbeddingService converts free text into fixed-dimension vectors. All
// vectors stored in or queried against one index must come from the same
// backend; the knowledge service enforces that with the Dimension method.
type EmbeddingService interface {
	Name() string
	// Dimension is 0 until the backend has produced its first vector.
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbeddingService selects the embedding backend at construction time.
// Call sites never branch on the backend.
func NewEmbeddingService(cfg config.EmbeddingConfig) (EmbeddingService, error) {
	switch cfg.Backend {
	case "ollama", "":
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.OllamaModel), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, types.ConfigurationErrorf("openai embedding backend selected but OPENAI_API_KEY is not set")
		}
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, types.ConfigurationErrorf("unknown embedding backend %q", cfg.Backend)
	}
}
