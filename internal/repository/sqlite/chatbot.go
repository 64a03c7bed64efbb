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

// ChatbotRepository handles chatbot data access
type ChatbotRepository struct {
	db *DB
}

// NewChatbotRepository creates a new chatbot repository
func NewChatbotRepository(db *DB) *ChatbotRepository {
	return &ChatbotRepository{db: db}
}

const chatbotColumns = `c.id, c.account_id, c.name, c.primary_color, c.welcome_message,
	c.is_active, c.lookup_code, c.created_at, c.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanChatbot(row scanner, extra ...any) (*domain.Chatbot, error) {
	var c domain.Chatbot
	var created, updated int64
	dest := []any{
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.PrimaryColor,
		&c.WelcomeMessage,
		&c.IsActive,
		&c.LookupCode,
		&created,
		&updated,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.CreatedAt = fromNanos(created)
	c.UpdatedAt = fromNanos(updated)
	return &c, nil
}

// Create inserts a chatbot. Returns domain.ErrConflict on a lookup code collision.
func (r *ChatbotRepository) Create(ctx context.Context, chatbot *domain.Chatbot) error {
	query := `
		INSERT INTO chatbots (
			id, account_id, name, primary_color, welcome_message,
			is_active, lookup_code, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		chatbot.ID,
		chatbot.AccountID,
		chatbot.Name,
		chatbot.PrimaryColor,
		chatbot.WelcomeMessage,
		chatbot.IsActive,
		chatbot.LookupCode,
		toNanos(chatbot.CreatedAt),
		toNanos(chatbot.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lookup code taken: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create chatbot: %w", err)
	}
	return nil
}

func (r *ChatbotRepository) getOne(ctx context.Context, where string, arg any) (*domain.Chatbot, error) {
	query := `SELECT ` + chatbotColumns + ` FROM chatbots c WHERE ` + where

	c, err := scanChatbot(r.db.SQL.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return c, nil
}

// GetByID retrieves a chatbot by ID
func (r *ChatbotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	return r.getOne(ctx, "c.id = ?", id)
}

// GetByLookupCode retrieves a chatbot by its public lookup code
func (r *ChatbotRepository) GetByLookupCode(ctx context.Context, code string) (*domain.Chatbot, error) {
	return r.getOne(ctx, "c.lookup_code = ?", code)
}

// GetByLookupCodeWithOwner retrieves a chatbot and its owner's business name
func (r *ChatbotRepository) GetByLookupCodeWithOwner(ctx context.Context, code string) (*domain.ChatbotWithOwner, error) {
	query := `
		SELECT ` + chatbotColumns + `, a.business_name
		FROM chatbots c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.lookup_code = ?
	`

	var businessName string
	c, err := scanChatbot(r.db.SQL.QueryRowContext(ctx, query, code), &businessName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return &domain.ChatbotWithOwner{Chatbot: *c, BusinessName: businessName}, nil
}

// ListByAccount lists an account's chatbots, newest first, with conversation counts
func (r *ChatbotRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.ChatbotSummary, error) {
	query := `
		SELECT ` + chatbotColumns + `, COUNT(cv.id)
		FROM chatbots c
		LEFT JOIN conversations cv ON cv.chatbot_id = c.id
		WHERE c.account_id = ?
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.SQL.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	defer rows.Close()

	chatbots := []domain.ChatbotSummary{}
	for rows.Next() {
		var count int
		c, err := scanChatbot(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chatbot: %w", err)
		}
		chatbots = append(chatbots, domain.ChatbotSummary{Chatbot: *c, ConversationCount: count})
	}
	return chatbots, rows.Err()
}

// Update persists editable chatbot fields
func (r *ChatbotRepository) Update(ctx context.Context, chatbot *domain.Chatbot) error {
	query := `
		UPDATE chatbots
		SET name = ?, primary_color = ?, welcome_message = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		chatbot.Name,
		chatbot.PrimaryColor,
		chatbot.WelcomeMessage,
		toNanos(time.Now()),
		chatbot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chatbot: %w", err)
	}
	return nil
}

// SetActive toggles whether the chatbot accepts visitor messages
func (r *ChatbotRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE chatbots SET is_active = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.SQL.ExecContext(ctx, query, active, toNanos(time.Now()), id); err != nil {
		return fmt.Errorf("failed to update chatbot status: %w", err)
	}
	return nil
}

// Delete removes a chatbot with its conversations
func (r *ChatbotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.SQL.ExecContext(ctx, `DELETE FROM chatbots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	return nil
}
