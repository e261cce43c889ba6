package generativeAI

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/itinera-ai/itinera/config"
)

// Client abstracts the text generator. Responses are raw text with no
// guaranteed structure; callers must treat them as untrusted input.
type Client interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
}

// New builds the generator client selected by configuration. The default is
// the OpenAI-compatible backend pointed at a local endpoint.
func New(cfg *config.Config) (Client, error) {
	switch cfg.Generator.Provider {
	case "", "openai-compat":
		return NewOpenAICompatClient(cfg), nil
	case "gemini":
		return NewGeminiClient(context.Background(), cfg)
	}
	return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
}

// OpenAICompatClient talks to any OpenAI-compatible completions endpoint,
// typically a local model server such as Ollama's /v1 surface.
type OpenAICompatClient struct {
	client *openai.Client
	model  string
}

func NewOpenAICompatClient(cfg *config.Config) *OpenAICompatClient {
	apiKey := os.Getenv(cfg.Generator.APIKeyEnv)
	if apiKey == "" {
		// Local endpoints generally ignore the key but the client requires one.
		apiKey = "local"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Generator.BaseURL != "" {
		clientCfg.BaseURL = cfg.Generator.BaseURL
	}
	clientCfg.HTTPClient.Timeout = cfg.Generator.Timeout + 5*time.Second

	return &OpenAICompatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Generator.Model,
	}
}

func (c *OpenAICompatClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiClient is the hosted alternative backend.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	apiKey := os.Getenv(cfg.Generator.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("generator API key env %s is not set", cfg.Generator.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Generator.Model}, nil
}

func (c *GeminiClient) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}
