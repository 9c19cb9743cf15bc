package ai

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the provider answers without any choice.
var ErrEmptyResponse = errors.New("empty chat response")

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ChatRequest is a single completion request.
// A nil Temperature or zero MaxTokens fall back to the service defaults.
type ChatRequest struct {
	Messages    []Message
	Temperature *float32
	MaxTokens   int
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat and returns the first choice's content.
	Chat(ctx context.Context, req *ChatRequest) (string, error)
}

type llmService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewLLMService creates a new LLMService backed by an OpenAI-compatible API.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	if cfg == nil {
		return nil, errors.New("LLM config is nil")
	}
	cfg.applyDefaults()

	switch cfg.Provider {
	case "openai", "deepseek":
		// DeepSeek is compatible with OpenAI API
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &llmService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: *cfg.Temperature,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	if req == nil || len(req.Messages) == 0 {
		return "", errors.New("chat request has no messages")
	}

	temperature := s.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    convertMessages(req.Messages),
		Temperature: wireTemperature(temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// wireTemperature keeps an explicit zero on the wire. go-openai omits a zero
// temperature, which providers read as their default of 1.
func wireTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}

		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		}
	}
	return llmMessages
}

// Helper for creating system prompts
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}
