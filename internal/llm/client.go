package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/chatbot-pro/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrEmptyOutput is reported when the model answers with nothing but whitespace
var ErrEmptyOutput = errors.New("empty model output")

// Result is the outcome of one model call. Exactly one of Text or Err is set:
// a successful call carries non-empty trimmed text, a failed one the reason.
type Result struct {
	Text string
	Err  error
}

// Ok builds a successful result
func Ok(text string) Result {
	return Result{Text: text}
}

// Failed builds a failed result
func Failed(err error) Result {
	return Result{Err: err}
}

// IsOk reports whether the call produced a reply
func (r Result) IsOk() bool {
	return r.Err == nil
}

// Client performs single, time-bounded completions against the router's
// default provider. Upstream failures are returned as Result values.
type Client struct {
	router  *Router
	timeout time.Duration
}

// NewClient creates a new model client
func NewClient(router *Router, timeout time.Duration) *Client {
	return &Client{router: router, timeout: timeout}
}

// Generate sends prompt to the default provider once, without retry
func (c *Client) Generate(ctx context.Context, prompt string) Result {
	provider, err := c.router.GetProvider("")
	if err != nil {
		log.Error().Err(err).Msg("No model provider available")
		return Failed(err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := provider.Generate(ctx, prompt, "")
	elapsed := time.Since(start)

	result := toResult(resp, err)
	metrics.RecordLLM(provider.Name(), result.IsOk(), elapsed)

	if !result.IsOk() {
		log.Warn().
			Err(result.Err).
			Str("provider", provider.Name()).
			Dur("elapsed", elapsed).
			Msg("Model call failed")
	}
	return result
}

func toResult(resp *Response, err error) Result {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Failed(fmt.Errorf("model call timed out: %w", err))
		}
		return Failed(err)
	}
	if resp == nil {
		return Failed(ErrEmptyOutput)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Failed(ErrEmptyOutput)
	}
	return Ok(text)
}
