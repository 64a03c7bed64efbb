package domain

import (
	"context"

	"github.com/google/uuid"
)

// AccountStats holds aggregate counters across an account's chatbots
type AccountStats struct {
	TotalChatbots      int `json:"total_chatbots"`
	ActiveChatbots     int `json:"active_chatbots"`
	TotalConversations int `json:"total_conversations"`
	UniqueVisitors     int `json:"unique_visitors"`
	VisitorMessages    int `json:"visitor_messages"`
	AssistantMessages  int `json:"assistant_messages"`
}

// ResponseRate is the share of visitor messages that received a model reply, in percent
func (s AccountStats) ResponseRate() int {
	if s.VisitorMessages == 0 {
		return 0
	}
	rate := float64(s.AssistantMessages) * 100 / float64(s.VisitorMessages)
	if rate > 100 {
		rate = 100
	}
	return int(rate + 0.5)
}

// Overview is the dashboard landing payload
type Overview struct {
	AccountName    string                `json:"account_name"`
	BusinessName   string                `json:"business_name,omitempty"`
	Stats          AccountStats          `json:"stats"`
	ResponseRate   int                   `json:"response_rate"`
	RecentActivity []ConversationSummary `json:"recent_activity"`
}

// StatsRepository computes dashboard aggregates
type StatsRepository interface {
	AccountStats(ctx context.Context, accountID uuid.UUID) (*AccountStats, error)
}
