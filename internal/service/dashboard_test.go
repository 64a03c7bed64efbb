package service

import (
	"context"
	"testing"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	accounts := new(MockAccountRepo)
	conversations := new(MockConversationRepo)
	stats := new(MockStatsRepo)
	svc := NewDashboardService(accounts, conversations, stats)

	accounts.On("GetByID", ctx, accountID).Return(&domain.Account{ID: accountID, Name: "Jamie", BusinessName: "Acme"}, nil)
	stats.On("AccountStats", ctx, accountID).Return(&domain.AccountStats{
		TotalChatbots:     2,
		ActiveChatbots:    1,
		VisitorMessages:   3,
		AssistantMessages: 2,
	}, nil)
	conversations.On("ListRecentByAccount", ctx, accountID, RecentActivityLimit).Return(nil, nil)

	overview, err := svc.Overview(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie", overview.AccountName)
	assert.Equal(t, 2, overview.Stats.TotalChatbots)
	assert.Equal(t, 67, overview.ResponseRate)
	assert.NotNil(t, overview.RecentActivity)
}

func TestDashboardService_OverviewUnknownAccount(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepo)
	svc := NewDashboardService(accounts, nil, nil)

	id := uuid.New()
	accounts.On("GetByID", ctx, id).Return(nil, nil)

	_, err := svc.Overview(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
