package postgres

import (
	"context"
	"fmt"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
)

// StatsRepository computes dashboard aggregates
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// AccountStats aggregates chatbot, conversation and message counts for an account
func (r *StatsRepository) AccountStats(ctx context.Context, accountID uuid.UUID) (*domain.AccountStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM chatbots WHERE account_id = $1),
			(SELECT COUNT(*) FROM chatbots WHERE account_id = $1 AND is_active),
			(SELECT COUNT(*) FROM conversations cv
				JOIN chatbots c ON c.id = cv.chatbot_id WHERE c.account_id = $1),
			(SELECT COUNT(DISTINCT cv.session_id) FROM conversations cv
				JOIN chatbots c ON c.id = cv.chatbot_id WHERE c.account_id = $1),
			(SELECT COUNT(*) FILTER (WHERE m.from_visitor) FROM messages m
				JOIN conversations cv ON cv.id = m.conversation_id
				JOIN chatbots c ON c.id = cv.chatbot_id WHERE c.account_id = $1),
			(SELECT COUNT(*) FILTER (WHERE NOT m.from_visitor) FROM messages m
				JOIN conversations cv ON cv.id = m.conversation_id
				JOIN chatbots c ON c.id = cv.chatbot_id WHERE c.account_id = $1)
	`

	var s domain.AccountStats
	err := r.db.Pool.QueryRow(ctx, query, accountID).Scan(
		&s.TotalChatbots,
		&s.ActiveChatbots,
		&s.TotalConversations,
		&s.UniqueVisitors,
		&s.VisitorMessages,
		&s.AssistantMessages,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute account stats: %w", err)
	}
	return &s, nil
}
