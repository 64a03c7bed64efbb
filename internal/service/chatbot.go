package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/render"
	"github.com/Rrens/chatbot-pro/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// lookupCodeAttempts bounds retries when a generated lookup code collides
const lookupCodeAttempts = 3

// ConfigCache caches the public widget config by lookup code
type ConfigCache interface {
	Get(ctx context.Context, lookupCode string) (*domain.PublicConfig, error)
	Set(ctx context.Context, lookupCode string, cfg *domain.PublicConfig) error
	Invalidate(ctx context.Context, lookupCode string) error
}

// NopConfigCache is used when no cache backend is configured
type NopConfigCache struct{}

func (NopConfigCache) Get(context.Context, string) (*domain.PublicConfig, error) { return nil, nil }
func (NopConfigCache) Set(context.Context, string, *domain.PublicConfig) error   { return nil }
func (NopConfigCache) Invalidate(context.Context, string) error                  { return nil }

// TranscriptEntry is one rendered message of a conversation transcript
type TranscriptEntry struct {
	ID          uuid.UUID          `json:"id"`
	Role        domain.MessageRole `json:"role"`
	Content     string             `json:"content"`
	ContentHTML string             `json:"content_html"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Transcript is a conversation with its rendered messages
type Transcript struct {
	Conversation domain.Conversation `json:"conversation"`
	ChatbotName  string              `json:"chatbot_name"`
	Messages     []TranscriptEntry   `json:"messages"`
}

// ChatbotService handles chatbot management for account owners
type ChatbotService struct {
	chatbots      domain.ChatbotRepository
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	cache         ConfigCache
}

// NewChatbotService creates a new chatbot service. A nil cache disables caching.
func NewChatbotService(
	chatbots domain.ChatbotRepository,
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	cache ConfigCache,
) *ChatbotService {
	if cache == nil {
		cache = NopConfigCache{}
	}
	return &ChatbotService{
		chatbots:      chatbots,
		conversations: conversations,
		messages:      messages,
		cache:         cache,
	}
}

// Create registers a new active chatbot with a fresh lookup code
func (s *ChatbotService) Create(ctx context.Context, accountID uuid.UUID, input domain.ChatbotInput) (*domain.Chatbot, error) {
	now := time.Now().UTC()
	chatbot := &domain.Chatbot{
		ID:             uuid.New(),
		AccountID:      accountID,
		Name:           strings.TrimSpace(input.Name),
		PrimaryColor:   input.PrimaryColor,
		WelcomeMessage: strings.TrimSpace(input.WelcomeMessage),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for attempt := 1; attempt <= lookupCodeAttempts; attempt++ {
		code, err := security.NewLookupCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate lookup code: %w", err)
		}
		chatbot.LookupCode = code

		err = s.chatbots.Create(ctx, chatbot)
		if err == nil {
			log.Info().
				Str("chatbot_id", chatbot.ID.String()).
				Str("account_id", accountID.String()).
				Msg("Chatbot created")
			return chatbot, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("failed to create chatbot: %w", err)
		}
		log.Warn().Int("attempt", attempt).Msg("Lookup code collision, retrying")
	}

	return nil, fmt.Errorf("failed to allocate a unique lookup code: %w", domain.ErrInternal)
}

// List returns the account's chatbots with conversation counts
func (s *ChatbotService) List(ctx context.Context, accountID uuid.UUID) ([]domain.ChatbotSummary, error) {
	chatbots, err := s.chatbots.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	if chatbots == nil {
		chatbots = []domain.ChatbotSummary{}
	}
	return chatbots, nil
}

// Get returns a chatbot owned by the account
func (s *ChatbotService) Get(ctx context.Context, accountID, chatbotID uuid.UUID) (*domain.Chatbot, error) {
	chatbot, err := s.chatbots.GetByID(ctx, chatbotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	// Other accounts' chatbots are indistinguishable from missing ones
	if chatbot == nil || chatbot.AccountID != accountID {
		return nil, fmt.Errorf("chatbot not found: %w", domain.ErrNotFound)
	}
	return chatbot, nil
}

// Update changes the chatbot's display settings
func (s *ChatbotService) Update(ctx context.Context, accountID, chatbotID uuid.UUID, input domain.ChatbotInput) (*domain.Chatbot, error) {
	chatbot, err := s.Get(ctx, accountID, chatbotID)
	if err != nil {
		return nil, err
	}

	chatbot.Name = strings.TrimSpace(input.Name)
	chatbot.PrimaryColor = input.PrimaryColor
	chatbot.WelcomeMessage = strings.TrimSpace(input.WelcomeMessage)
	chatbot.UpdatedAt = time.Now().UTC()

	if err := s.chatbots.Update(ctx, chatbot); err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}
	s.invalidate(ctx, chatbot.LookupCode)

	return chatbot, nil
}

// ToggleActive flips the chatbot between active and inactive
func (s *ChatbotService) ToggleActive(ctx context.Context, accountID, chatbotID uuid.UUID) (*domain.Chatbot, error) {
	chatbot, err := s.Get(ctx, accountID, chatbotID)
	if err != nil {
		return nil, err
	}

	chatbot.IsActive = !chatbot.IsActive
	if err := s.chatbots.SetActive(ctx, chatbot.ID, chatbot.IsActive); err != nil {
		return nil, fmt.Errorf("failed to toggle chatbot: %w", err)
	}
	s.invalidate(ctx, chatbot.LookupCode)

	log.Info().
		Str("chatbot_id", chatbot.ID.String()).
		Bool("active", chatbot.IsActive).
		Msg("Chatbot status changed")

	return chatbot, nil
}

// Delete removes the chatbot together with its conversations
func (s *ChatbotService) Delete(ctx context.Context, accountID, chatbotID uuid.UUID) error {
	chatbot, err := s.Get(ctx, accountID, chatbotID)
	if err != nil {
		return err
	}

	if err := s.chatbots.Delete(ctx, chatbot.ID); err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	s.invalidate(ctx, chatbot.LookupCode)

	return nil
}

// ListConversations returns a page of the chatbot's conversations
func (s *ChatbotService) ListConversations(ctx context.Context, accountID, chatbotID uuid.UUID, limit, offset int) ([]domain.ConversationSummary, error) {
	if _, err := s.Get(ctx, accountID, chatbotID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	conversations, err := s.conversations.ListByChatbot(ctx, chatbotID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if conversations == nil {
		conversations = []domain.ConversationSummary{}
	}
	return conversations, nil
}

// Transcript returns a conversation with every message rendered for display
func (s *ChatbotService) Transcript(ctx context.Context, accountID, conversationID uuid.UUID) (*Transcript, error) {
	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}

	chatbot, err := s.Get(ctx, accountID, conversation.ChatbotID)
	if err != nil {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}

	messages, err := s.messages.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	entries := make([]TranscriptEntry, len(messages))
	for i, m := range messages {
		html := render.Escape(m.Content)
		if !m.FromVisitor {
			html = render.Markdown(m.Content)
		}
		entries[i] = TranscriptEntry{
			ID:          m.ID,
			Role:        m.Role(),
			Content:     m.Content,
			ContentHTML: html,
			CreatedAt:   m.CreatedAt,
		}
	}

	return &Transcript{
		Conversation: *conversation,
		ChatbotName:  chatbot.Name,
		Messages:     entries,
	}, nil
}

// PublicConfig returns the widget config of an active chatbot
func (s *ChatbotService) PublicConfig(ctx context.Context, lookupCode string) (*domain.PublicConfig, error) {
	cached, err := s.cache.Get(ctx, lookupCode)
	if err != nil {
		log.Warn().Err(err).Str("lookup_code", lookupCode).Msg("Config cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	chatbot, err := s.chatbots.GetByLookupCode(ctx, lookupCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w: %w", domain.ErrInternal, err)
	}
	if chatbot == nil || !chatbot.IsActive {
		return nil, fmt.Errorf("chatbot not found or inactive: %w", domain.ErrNotFound)
	}

	cfg := chatbot.PublicConfig()
	if err := s.cache.Set(ctx, lookupCode, &cfg); err != nil {
		log.Warn().Err(err).Str("lookup_code", lookupCode).Msg("Config cache write failed")
	}

	return &cfg, nil
}

func (s *ChatbotService) invalidate(ctx context.Context, lookupCode string) {
	invalidateConfig(ctx, s.cache, lookupCode)
}

func invalidateConfig(ctx context.Context, cache ConfigCache, lookupCode string) {
	if err := cache.Invalidate(ctx, lookupCode); err != nil {
		log.Warn().Err(err).Str("lookup_code", lookupCode).Msg("Config cache invalidation failed")
	}
}
