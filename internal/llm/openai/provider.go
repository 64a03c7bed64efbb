package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/llm"
	openai "github.com/sashabaranov/go-openai"
)

const maxCompletionTokens = 512

// Provider implements llm.Provider for OpenAI-compatible chat completion APIs
type Provider struct {
	name         string
	apiKey       string
	defaultModel string
	models       []string
	client       *openai.Client
}

// NewProvider creates a provider for api.openai.com
func NewProvider(cfg config.OpenAIConfig) *Provider {
	return newProvider("openai", cfg, "gpt-4o-mini", []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	})
}

// NewDeepSeekProvider creates a provider for DeepSeek's OpenAI-compatible endpoint
func NewDeepSeekProvider(cfg config.OpenAIConfig) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepseek.com/v1"
	}
	return newProvider("deepseek", cfg, "deepseek-chat", []string{
		"deepseek-chat",
		"deepseek-reasoner",
	})
}

func newProvider(name string, cfg config.OpenAIConfig, fallbackModel string, models []string) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = fallbackModel
	}

	return &Provider{
		name:         name,
		apiKey:       cfg.APIKey,
		defaultModel: model,
		models:       models,
		client:       openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return p.name
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return p.models
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate sends the prompt as a single user message
func (p *Provider) Generate(ctx context.Context, prompt string, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxCompletionTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return &llm.Response{
		Text:       resp.Choices[0].Message.Content,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
