package service

import (
	"context"
	"fmt"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
)

// RecentActivityLimit is how many conversations the overview lists
const RecentActivityLimit = 5

// DashboardService builds the account overview
type DashboardService struct {
	accounts      domain.AccountRepository
	conversations domain.ConversationRepository
	stats         domain.StatsRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	accounts domain.AccountRepository,
	conversations domain.ConversationRepository,
	stats domain.StatsRepository,
) *DashboardService {
	return &DashboardService{
		accounts:      accounts,
		conversations: conversations,
		stats:         stats,
	}
}

// Overview returns aggregate stats and the latest conversations
func (s *DashboardService) Overview(ctx context.Context, accountID uuid.UUID) (*domain.Overview, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}

	stats, err := s.stats.AccountStats(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	recent, err := s.conversations.ListRecentByAccount(ctx, accountID, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent conversations: %w", err)
	}
	if recent == nil {
		recent = []domain.ConversationSummary{}
	}

	return &domain.Overview{
		AccountName:    account.Name,
		BusinessName:   account.BusinessName,
		Stats:          *stats,
		ResponseRate:   stats.ResponseRate(),
		RecentActivity: recent,
	}, nil
}
