package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConversationRepository handles conversation data access
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindOrCreate returns the conversation for (chatbotID, sessionID), inserting it
// if absent. A losing concurrent insert falls through to the re-read.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, chatbotID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	insert := `
		INSERT INTO conversations (id, chatbot_id, session_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chatbot_id, session_id) DO NOTHING
		RETURNING id, chatbot_id, session_id, created_at
	`

	var conv domain.Conversation
	err := r.db.Pool.QueryRow(ctx, insert, uuid.New(), chatbotID, sessionID, time.Now().UTC()).Scan(
		&conv.ID,
		&conv.ChatbotID,
		&conv.SessionID,
		&conv.CreatedAt,
	)
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	query := `
		SELECT id, chatbot_id, session_id, created_at
		FROM conversations
		WHERE chatbot_id = $1 AND session_id = $2
	`
	err = r.db.Pool.QueryRow(ctx, query, chatbotID, sessionID).Scan(
		&conv.ID,
		&conv.ChatbotID,
		&conv.SessionID,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// Get retrieves a conversation by ID
func (r *ConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT id, chatbot_id, session_id, created_at FROM conversations WHERE id = $1`

	var conv domain.Conversation
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&conv.ID,
		&conv.ChatbotID,
		&conv.SessionID,
		&conv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

const summaryQuery = `
	SELECT cv.id, cv.chatbot_id, cv.session_id, cv.created_at, c.name,
	       COUNT(m.seq), MAX(m.created_at)
	FROM conversations cv
	JOIN chatbots c ON c.id = cv.chatbot_id
	LEFT JOIN messages m ON m.conversation_id = cv.id
`

func scanSummaries(rows pgx.Rows) ([]domain.ConversationSummary, error) {
	defer rows.Close()

	summaries := []domain.ConversationSummary{}
	for rows.Next() {
		var s domain.ConversationSummary
		if err := rows.Scan(
			&s.ID,
			&s.ChatbotID,
			&s.SessionID,
			&s.CreatedAt,
			&s.ChatbotName,
			&s.MessageCount,
			&s.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListByChatbot lists a chatbot's conversations, most recently created first
func (r *ConversationRepository) ListByChatbot(ctx context.Context, chatbotID uuid.UUID, limit, offset int) ([]domain.ConversationSummary, error) {
	query := summaryQuery + `
		WHERE cv.chatbot_id = $1
		GROUP BY cv.id, c.name
		ORDER BY cv.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, chatbotID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return scanSummaries(rows)
}

// ListRecentByAccount lists the newest conversations across an account's chatbots
func (r *ConversationRepository) ListRecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	query := summaryQuery + `
		WHERE c.account_id = $1
		GROUP BY cv.id, c.name
		ORDER BY cv.created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return scanSummaries(rows)
}
