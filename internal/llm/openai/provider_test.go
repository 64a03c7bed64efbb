package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/chatbot-pro/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"We ship in 3 days."}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	p := NewDeepSeekProvider(config.OpenAIConfig{APIKey: "secret", BaseURL: srv.URL + "/v1"})
	resp, err := p.Generate(context.Background(), "prompt", "")
	require.NoError(t, err)

	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, "We ship in 3 days.", resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "prompt", got.Messages[0].Content)
}

func TestProvider_GenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewProvider(config.OpenAIConfig{APIKey: "secret", BaseURL: srv.URL + "/v1"})
	_, err := p.Generate(context.Background(), "prompt", "")
	assert.Error(t, err)
}
