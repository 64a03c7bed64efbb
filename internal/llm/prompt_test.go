package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt(Persona{
		Name:            "ShopBot",
		WelcomeMessage:  "Hi there, how can I help?",
		BusinessContext: "Acme Shoes",
	})

	assert.True(t, strings.HasPrefix(prompt, "You are ShopBot, an AI customer support assistant"))
	assert.Contains(t, prompt, "Business context: Acme Shoes")
	assert.Contains(t, prompt, `Welcome message: "Hi there, how can I help?"`)
	assert.Contains(t, prompt, "Keep responses under 200 words")
}

func TestSystemPrompt_DefaultBusinessContext(t *testing.T) {
	prompt := SystemPrompt(Persona{Name: "ShopBot", BusinessContext: "   "})
	assert.Contains(t, prompt, "Business context: "+DefaultBusinessContext)
}

func TestBuildChatPrompt(t *testing.T) {
	history := []Turn{
		{FromVisitor: true, Content: "Do you ship to Canada?"},
		{FromVisitor: false, Content: "Yes, we do."},
	}

	prompt := BuildChatPrompt(Persona{Name: "ShopBot"}, history, "How long does it take?")

	assert.Contains(t, prompt, "\n\nConversation:\nCustomer: Do you ship to Canada?\nAssistant: Yes, we do.\n")
	assert.True(t, strings.HasSuffix(prompt, "Customer: How long does it take?\nAssistant:"))
}

func TestBuildChatPrompt_NoHistory(t *testing.T) {
	prompt := BuildChatPrompt(Persona{Name: "ShopBot"}, nil, "hello")
	assert.True(t, strings.HasSuffix(prompt, "Conversation:\nCustomer: hello\nAssistant:"))
}
