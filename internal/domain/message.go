package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleVisitor   MessageRole = "visitor"
	RoleAssistant MessageRole = "assistant"
)

// Message is an immutable entry in a conversation
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content"`
	FromVisitor    bool      `json:"from_visitor"`
	CreatedAt      time.Time `json:"created_at"`
}

// Role derives the message role from the origin flag
func (m Message) Role() MessageRole {
	if m.FromVisitor {
		return RoleVisitor
	}
	return RoleAssistant
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// ListRecent returns at most limit most recent messages, oldest first
	ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]Message, error)
}
