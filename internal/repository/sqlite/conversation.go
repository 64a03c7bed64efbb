package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
)

// ConversationRepository handles conversation data access
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindOrCreate returns the conversation for (chatbotID, sessionID), inserting it if absent
func (r *ConversationRepository) FindOrCreate(ctx context.Context, chatbotID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	insert := `
		INSERT INTO conversations (id, chatbot_id, session_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (chatbot_id, session_id) DO NOTHING
	`
	if _, err := r.db.SQL.ExecContext(ctx, insert, uuid.New(), chatbotID, sessionID, toNanos(time.Now())); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	query := `
		SELECT id, chatbot_id, session_id, created_at
		FROM conversations
		WHERE chatbot_id = ? AND session_id = ?
	`
	conv, err := scanConversation(r.db.SQL.QueryRowContext(ctx, query, chatbotID, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

// Get retrieves a conversation by ID
func (r *ConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT id, chatbot_id, session_id, created_at FROM conversations WHERE id = ?`

	conv, err := scanConversation(r.db.SQL.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conv, nil
}

func scanConversation(row scanner) (*domain.Conversation, error) {
	var conv domain.Conversation
	var created int64
	if err := row.Scan(&conv.ID, &conv.ChatbotID, &conv.SessionID, &created); err != nil {
		return nil, err
	}
	conv.CreatedAt = fromNanos(created)
	return &conv, nil
}

const summaryQuery = `
	SELECT cv.id, cv.chatbot_id, cv.session_id, cv.created_at, c.name,
	       COUNT(m.seq), MAX(m.created_at)
	FROM conversations cv
	JOIN chatbots c ON c.id = cv.chatbot_id
	LEFT JOIN messages m ON m.conversation_id = cv.id
`

func (r *ConversationRepository) listSummaries(ctx context.Context, query string, args ...any) ([]domain.ConversationSummary, error) {
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ConversationSummary{}
	for rows.Next() {
		var s domain.ConversationSummary
		var created int64
		var last sql.NullInt64
		if err := rows.Scan(
			&s.ID,
			&s.ChatbotID,
			&s.SessionID,
			&created,
			&s.ChatbotName,
			&s.MessageCount,
			&last,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		s.CreatedAt = fromNanos(created)
		if last.Valid {
			t := fromNanos(last.Int64)
			s.LastMessageAt = &t
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListByChatbot lists a chatbot's conversations, most recently created first
func (r *ConversationRepository) ListByChatbot(ctx context.Context, chatbotID uuid.UUID, limit, offset int) ([]domain.ConversationSummary, error) {
	query := summaryQuery + `
		WHERE cv.chatbot_id = ?
		GROUP BY cv.id
		ORDER BY cv.created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.listSummaries(ctx, query, chatbotID, limit, offset)
}

// ListRecentByAccount lists the newest conversations across an account's chatbots
func (r *ConversationRepository) ListRecentByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.ConversationSummary, error) {
	query := summaryQuery + `
		WHERE c.account_id = ?
		GROUP BY cv.id
		ORDER BY cv.created_at DESC
		LIMIT ?
	`
	return r.listSummaries(ctx, query, accountID, limit)
}
