package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/chatbot-pro/internal/config"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"resty.dev/v3"
)

// Provider implements llm.Provider for Ollama
type Provider struct {
	host         string
	defaultModel string
	client       *resty.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(cfg config.OllamaConfig) *Provider {
	model := cfg.DefaultModel
	if model == "" {
		model = "llama3"
	}
	host := strings.TrimSuffix(cfg.Host, "/")

	return &Provider{
		host:         host,
		defaultModel: model,
		client: resty.New().
			SetBaseURL(host).
			SetTimeout(300*time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "ollama"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"llama3",
		"llama3.1",
		"llama3.2",
		"mistral",
		"mixtral",
		"phi3",
		"qwen2",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has a host to talk to
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count"`
}

// Generate runs a non-streaming completion
func (p *Provider) Generate(ctx context.Context, prompt string, model string) (*llm.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	start := time.Now()
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:   model,
			Prompt:  prompt,
			Stream:  false,
			Options: map[string]any{"num_predict": 512},
		}).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode())
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &llm.Response{
		Text:       out.Response,
		Model:      model,
		TokensUsed: out.EvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
