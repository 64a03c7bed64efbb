package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Chatbot is a configurable assistant owned by one account
type Chatbot struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"account_id"`
	Name           string    `json:"name"`
	PrimaryColor   string    `json:"primary_color"`
	WelcomeMessage string    `json:"welcome_message"`
	IsActive       bool      `json:"is_active"`
	LookupCode     string    `json:"lookup_code"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ChatbotWithOwner carries the owner's business context used to ground the persona
type ChatbotWithOwner struct {
	Chatbot
	BusinessName string
}

// ChatbotSummary is a chatbot with its conversation count, used in listings
type ChatbotSummary struct {
	Chatbot
	ConversationCount int `json:"conversation_count"`
}

// ChatbotInput represents chatbot creation and update data
type ChatbotInput struct {
	Name           string `json:"name" validate:"required,min=2,max=100"`
	PrimaryColor   string `json:"primary_color" validate:"required,hexcolor6"`
	WelcomeMessage string `json:"welcome_message" validate:"required,min=10,max=1000"`
}

// PublicConfig is the subset of a chatbot exposed to the embedded widget
type PublicConfig struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	PrimaryColor   string    `json:"primaryColor"`
	WelcomeMessage string    `json:"welcomeMessage"`
	IsActive       bool      `json:"isActive"`
}

// PublicConfig returns the widget-facing view of the chatbot
func (c *Chatbot) PublicConfig() PublicConfig {
	return PublicConfig{
		ID:             c.ID,
		Name:           c.Name,
		PrimaryColor:   c.PrimaryColor,
		WelcomeMessage: c.WelcomeMessage,
		IsActive:       c.IsActive,
	}
}

// ChatbotRepository defines the interface for chatbot storage.
// Create returns ErrConflict when the lookup code is already taken.
type ChatbotRepository interface {
	Create(ctx context.Context, chatbot *Chatbot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chatbot, error)
	GetByLookupCode(ctx context.Context, code string) (*Chatbot, error)
	GetByLookupCodeWithOwner(ctx context.Context, code string) (*ChatbotWithOwner, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]ChatbotSummary, error)
	Update(ctx context.Context, chatbot *Chatbot) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}
