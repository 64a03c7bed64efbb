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

// AccountRepository handles account data access
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, name, email, password_hash, business_name, website,
	product_count, referral_source, is_onboarded, created_at, updated_at`

// Create inserts a new account. Returns domain.ErrConflict when the email is taken.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.SQL.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.BusinessName,
		account.Website,
		account.ProductCount,
		account.ReferralSource,
		account.IsOnboarded,
		toNanos(account.CreatedAt),
		toNanos(account.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return scanAccount(r.db.SQL.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return scanAccount(r.db.SQL.QueryRowContext(ctx, query, email))
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	var created, updated int64
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.BusinessName,
		&a.Website,
		&a.ProductCount,
		&a.ReferralSource,
		&a.IsOnboarded,
		&created,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.CreatedAt = fromNanos(created)
	a.UpdatedAt = fromNanos(updated)
	return &a, nil
}

// Update persists profile and onboarding fields
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = ?, email = ?, business_name = ?, website = ?,
		    product_count = ?, referral_source = ?, is_onboarded = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.SQL.ExecContext(ctx, query,
		account.Name,
		account.Email,
		account.BusinessName,
		account.Website,
		account.ProductCount,
		account.ReferralSource,
		account.IsOnboarded,
		toNanos(time.Now()),
		account.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.SQL.ExecContext(ctx, query, passwordHash, toNanos(time.Now()), id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes an account; chatbots, conversations and messages cascade
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.SQL.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
