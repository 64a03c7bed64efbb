package service

import (
	"context"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockChatbotRepo mocks the ChatbotRepository interface
type MockChatbotRepo struct {
	mock.Mock
}

func (m *MockChatbotRepo) Create(ctx context.Context, chatbot *domain.Chatbot) error {
	args := m.Called(ctx, chatbot)
	return args.Error(0)
}

func (m *MockChatbotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chatbot), args.Error(1)
}

func (m *MockChatbotRepo) GetByLookupCode(ctx context.Context, code string) (*domain.Chatbot, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chatbot), args.Error(1)
}

func (m *MockChatbotRepo) GetByLookupCodeWithOwner(ctx context.Context, code string) (*domain.ChatbotWithOwner, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatbotWithOwner), args.Error(1)
}

func (m *MockChatbotRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.ChatbotSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatbotSummary), args.Error(1)
}

func (m *MockChatbotRepo) Update(ctx context.Context, chatbot *domain.Chatbot) error {
	args := m.Called(ctx, chatbot)
	return args.Error(0)
}

func (m *MockChatbotRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockChatbotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConversationRepo mocks the ConversationRepository interface
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) FindOrCreate(ctx context.Context, chatbotID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	args := m.Called(ctx, chatbotID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepo) ListByChatbot(ctx context.Context, chatbotID uuid.UUID, limit, offset int) ([]domain.ConversationSummary, error) {
	args := m.Called(ctx, chatbotID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationSummary), args.Error(1)
}

func (m *MockConversationRepo) ListRecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConversationSummary), args.Error(1)
}

// MockMessageRepo mocks the MessageRepository interface
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepo) ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockAccountRepo mocks the AccountRepository interface
type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStatsRepo mocks the StatsRepository interface
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) AccountStats(ctx context.Context, accountID uuid.UUID) (*domain.AccountStats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountStats), args.Error(1)
}

// MockConfigCache mocks the ConfigCache interface
type MockConfigCache struct {
	mock.Mock
}

func (m *MockConfigCache) Get(ctx context.Context, lookupCode string) (*domain.PublicConfig, error) {
	args := m.Called(ctx, lookupCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicConfig), args.Error(1)
}

func (m *MockConfigCache) Set(ctx context.Context, lookupCode string, cfg *domain.PublicConfig) error {
	args := m.Called(ctx, lookupCode, cfg)
	return args.Error(0)
}

func (m *MockConfigCache) Invalidate(ctx context.Context, lookupCode string) error {
	args := m.Called(ctx, lookupCode)
	return args.Error(0)
}

// MockGenerator mocks the Generator interface and records prompts
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) llm.Result {
	args := m.Called(ctx, prompt)
	return args.Get(0).(llm.Result)
}
