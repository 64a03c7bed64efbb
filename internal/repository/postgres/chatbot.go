package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func scanChatbot(row pgx.Row, extra ...any) (*domain.Chatbot, error) {
	var c domain.Chatbot
	dest := []any{
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.PrimaryColor,
		&c.WelcomeMessage,
		&c.IsActive,
		&c.LookupCode,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a chatbot. Returns domain.ErrConflict on a lookup code collision.
func (r *ChatbotRepository) Create(ctx context.Context, chatbot *domain.Chatbot) error {
	query := `
		INSERT INTO chatbots (
			id, account_id, name, primary_color, welcome_message,
			is_active, lookup_code, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		chatbot.ID,
		chatbot.AccountID,
		chatbot.Name,
		chatbot.PrimaryColor,
		chatbot.WelcomeMessage,
		chatbot.IsActive,
		chatbot.LookupCode,
		chatbot.CreatedAt,
		chatbot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lookup code taken: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create chatbot: %w", err)
	}

	return nil
}

// GetByID retrieves a chatbot by ID
func (r *ChatbotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	query := `SELECT ` + chatbotColumns + ` FROM chatbots c WHERE c.id = $1`

	c, err := scanChatbot(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return c, nil
}

// GetByLookupCode retrieves a chatbot by its public lookup code
func (r *ChatbotRepository) GetByLookupCode(ctx context.Context, code string) (*domain.Chatbot, error) {
	query := `SELECT ` + chatbotColumns + ` FROM chatbots c WHERE c.lookup_code = $1`

	c, err := scanChatbot(r.db.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return c, nil
}

// GetByLookupCodeWithOwner retrieves a chatbot and its owner's business name
func (r *ChatbotRepository) GetByLookupCodeWithOwner(ctx context.Context, code string) (*domain.ChatbotWithOwner, error) {
	query := `
		SELECT ` + chatbotColumns + `, a.business_name
		FROM chatbots c
		JOIN accounts a ON a.id = c.account_id
		WHERE c.lookup_code = $1
	`

	var businessName string
	c, err := scanChatbot(r.db.Pool.QueryRow(ctx, query, code), &businessName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		WHERE c.account_id = $1
		GROUP BY c.id
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, accountID)
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
		SET name = $2,
		    primary_color = $3,
		    welcome_message = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query,
		chatbot.ID,
		chatbot.Name,
		chatbot.PrimaryColor,
		chatbot.WelcomeMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to update chatbot: %w", err)
	}
	return nil
}

// SetActive toggles whether the chatbot accepts visitor messages
func (r *ChatbotRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE chatbots SET is_active = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id, active); err != nil {
		return fmt.Errorf("failed to update chatbot status: %w", err)
	}
	return nil
}

// Delete removes a chatbot with its conversations
func (r *ChatbotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM chatbots WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	return nil
}
