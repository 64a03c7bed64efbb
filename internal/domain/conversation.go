package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversation groups the messages of one visitor session with one chatbot
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	ChatbotID uuid.UUID `json:"chatbot_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary is a conversation with activity counters for listings
type ConversationSummary struct {
	Conversation
	ChatbotName   string     `json:"chatbot_name,omitempty"`
	MessageCount  int        `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	// FindOrCreate returns the single conversation for (chatbotID, sessionID),
	// creating it if needed. Concurrent callers resolve to the same row.
	FindOrCreate(ctx context.Context, chatbotID uuid.UUID, sessionID string) (*Conversation, error)
	Get(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListByChatbot(ctx context.Context, chatbotID uuid.UUID, limit, offset int) ([]ConversationSummary, error)
	ListRecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]ConversationSummary, error)
}
