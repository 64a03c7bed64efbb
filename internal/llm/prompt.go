package llm

import (
	"fmt"
	"strings"
)

// DefaultBusinessContext is used when the owner has not described the business
const DefaultBusinessContext = "General ecommerce business"

// Persona describes who the assistant is speaking for
type Persona struct {
	Name            string
	WelcomeMessage  string
	BusinessContext string
}

// Turn is one prior message of the conversation
type Turn struct {
	FromVisitor bool
	Content     string
}

// SystemPrompt renders the customer-support persona instructions
func SystemPrompt(p Persona) string {
	businessContext := strings.TrimSpace(p.BusinessContext)
	if businessContext == "" {
		businessContext = DefaultBusinessContext
	}

	return fmt.Sprintf(`You are %s, an AI customer support assistant for an ecommerce business. 

Your role:
- Provide helpful, friendly, and professional customer support
- Answer questions about products, orders, shipping, returns, and general inquiries
- Be concise but thorough in your responses
- If you don't know something specific about the business, politely ask for clarification or suggest contacting human support
- Always maintain a helpful and positive tone
- Focus on solving customer problems and providing excellent service

Business context: %s

Welcome message: "%s"

Guidelines:
- Keep responses under 200 words when possible
- Use bullet points for lists or multiple items
- Be empathetic to customer concerns
- Offer to escalate to human support when needed
- Don't make promises about specific policies unless you're certain`, p.Name, businessContext, p.WelcomeMessage)
}

// BuildChatPrompt assembles persona, history (oldest first) and the new visitor
// message into a single completion prompt ending with "Assistant:".
func BuildChatPrompt(p Persona, history []Turn, message string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt(p))
	b.WriteString("\n\nConversation:\n")

	for _, t := range history {
		speaker := "Assistant"
		if t.FromVisitor {
			speaker = "Customer"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, t.Content)
	}

	fmt.Fprintf(&b, "Customer: %s\nAssistant:", message)
	return b.String()
}
