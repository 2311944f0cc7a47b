package service

import (
	"context"

	"github.com/bizpilot/bizpilot-be/types"
	"github.com/sashabaranov/go-openai"
)

type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService creates the OpenAI generation backend. baseURL may
// point at any OpenAI-compatible server (local LLM included).
func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		model:  model,
	}
}

func (s *OpenAIService) ModelVersion() string { return s.model }

func (s *OpenAIService) Complete(ctx context.Context, systemPrompt, userMessage string) (string, TokenUsage, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userMessage,
				},
			},
			MaxTokens: 1000,
		},
	)
	if err != nil {
		return "", TokenUsage{}, types.GenerationBackendErrorf("chat completion failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", TokenUsage{}, types.GenerationBackendErrorf("no response generated")
	}

	usage := TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}
