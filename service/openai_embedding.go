package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder is the API embedding backend. Higher quality than the
// local backend; each call costs money and network latency.
// Safe for concurrent use: the dimension is recorded once, under a lock.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel

	mu        sync.Mutex
	dimension int
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

func (e *OpenAIEmbedder) Name() string { return "openai/" + string(e.model) }

func (e *OpenAIEmbedder) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimension
}

func (e *OpenAIEmbedder) setDimension(n int) {
	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = n
	}
	e.mu.Unlock()
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	if len(vectors) > 0 {
		e.setDimension(len(vectors[0]))
	}
	return vectors, nil
}
