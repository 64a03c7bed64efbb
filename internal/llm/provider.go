package llm

import "context"

// Response contains a single model completion
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate completes a fully built prompt; an empty model selects DefaultModel
	Generate(ctx context.Context, prompt string, model string) (*Response, error)
}
