package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"github.com/Rrens/chatbot-pro/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HistoryLimit is how many prior messages are replayed into the prompt
const HistoryLimit = 20

// MaxSessionIDLength bounds the visitor session id, in characters
const MaxSessionIDLength = 255

// FallbackMessage is shown to the visitor when the model produced no reply
const FallbackMessage = "I'm sorry, I'm having trouble responding right now. Please try again or contact our support team."

// Generator produces a single model completion
type Generator interface {
	Generate(ctx context.Context, prompt string) llm.Result
}

// RelayResult is the reply returned to the widget
type RelayResult struct {
	Reply   string
	Success bool
}

// RelayService proxies visitor messages to the model and records the conversation
type RelayService struct {
	chatbots      domain.ChatbotRepository
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	model         Generator
}

// NewRelayService creates a new relay service
func NewRelayService(
	chatbots domain.ChatbotRepository,
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	model Generator,
) *RelayService {
	return &RelayService{
		chatbots:      chatbots,
		conversations: conversations,
		messages:      messages,
		model:         model,
	}
}

// Relay handles one visitor message for the chatbot behind lookupCode.
// Model failures are absorbed into a fallback reply; only validation,
// lookup and store failures are returned as errors.
func (s *RelayService) Relay(ctx context.Context, lookupCode, message, sessionID string) (*RelayResult, error) {
	message = strings.TrimSpace(message)
	sessionID = strings.TrimSpace(sessionID)
	if message == "" || sessionID == "" {
		metrics.RecordRelay(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("message and sessionId are required: %w", domain.ErrValidation)
	}
	if utf8.RuneCountInString(sessionID) > MaxSessionIDLength {
		metrics.RecordRelay(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("sessionId exceeds %d characters: %w", MaxSessionIDLength, domain.ErrValidation)
	}

	chatbot, err := s.chatbots.GetByLookupCodeWithOwner(ctx, lookupCode)
	if err != nil {
		return nil, s.internal("failed to resolve chatbot", err)
	}
	if chatbot == nil {
		log.Info().Str("lookup_code", lookupCode).Msg("Relay rejected: chatbot not found")
		metrics.RecordRelay(metrics.OutcomeNotFound)
		return nil, fmt.Errorf("chatbot not found or inactive: %w", domain.ErrNotFound)
	}
	if !chatbot.IsActive {
		log.Info().Str("lookup_code", lookupCode).Msg("Relay rejected: chatbot inactive")
		metrics.RecordRelay(metrics.OutcomeNotFound)
		return nil, fmt.Errorf("chatbot not found or inactive: %w", domain.ErrNotFound)
	}

	conversation, err := s.conversations.FindOrCreate(ctx, chatbot.ID, sessionID)
	if err != nil {
		return nil, s.internal("failed to open conversation", err)
	}

	history, err := s.messages.ListRecent(ctx, conversation.ID, HistoryLimit)
	if err != nil {
		return nil, s.internal("failed to load history", err)
	}

	inbound := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		Content:        message,
		FromVisitor:    true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, inbound); err != nil {
		return nil, s.internal("failed to save visitor message", err)
	}

	prompt := llm.BuildChatPrompt(personaOf(chatbot), turnsOf(history), message)
	result := s.model.Generate(ctx, prompt)

	return s.replyFromResult(ctx, conversation.ID, result), nil
}

// replyFromResult maps the model outcome onto the visitor reply. Only genuine
// model output is persisted; the fallback never enters the history.
func (s *RelayService) replyFromResult(ctx context.Context, conversationID uuid.UUID, result llm.Result) *RelayResult {
	if !result.IsOk() {
		metrics.RecordRelay(metrics.OutcomeFallback)
		return &RelayResult{Reply: FallbackMessage, Success: false}
	}

	reply := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Content:        result.Text,
		FromVisitor:    false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, reply); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("Failed to save assistant message")
	}

	metrics.RecordRelay(metrics.OutcomeOK)
	return &RelayResult{Reply: result.Text, Success: true}
}

func (s *RelayService) internal(msg string, err error) error {
	metrics.RecordRelay(metrics.OutcomeError)
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrInternal, err)
}

func personaOf(c *domain.ChatbotWithOwner) llm.Persona {
	return llm.Persona{
		Name:            c.Name,
		WelcomeMessage:  c.WelcomeMessage,
		BusinessContext: c.BusinessName,
	}
}

func turnsOf(history []domain.Message) []llm.Turn {
	turns := make([]llm.Turn, len(history))
	for i, m := range history {
		turns[i] = llm.Turn{FromVisitor: m.FromVisitor, Content: m.Content}
	}
	return turns
}
