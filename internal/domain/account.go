package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account represents a business owner using the dashboard
type Account struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	BusinessName   string    `json:"business_name,omitempty"`
	Website        string    `json:"website,omitempty"`
	ProductCount   string    `json:"product_count,omitempty"`
	ReferralSource string    `json:"referral_source,omitempty"`
	IsOnboarded    bool      `json:"is_onboarded"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountCreate represents registration data
type AccountCreate struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AccountLogin represents login credentials
type AccountLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Onboarding represents the business profile collected after signup
type Onboarding struct {
	BusinessName   string `json:"business_name" validate:"required,min=2,max=255"`
	Website        string `json:"website" validate:"omitempty,url"`
	ProductCount   string `json:"product_count" validate:"required,oneof=1-10 11-50 51-100 100+"`
	ReferralSource string `json:"referral_source" validate:"required,oneof=Google 'Social Media' Friend Other"`
}

// ProfileUpdate represents editable account settings
type ProfileUpdate struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email,max=255"`
	BusinessName string `json:"business_name" validate:"omitempty,min=2,max=255"`
	Website      string `json:"website" validate:"omitempty,url"`
}

// PasswordChange represents a password update request
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// AccountDeletion confirms an irreversible account removal
type AccountDeletion struct {
	ConfirmText string `json:"confirm_text" validate:"required,eq=DELETE"`
	Password    string `json:"password" validate:"required"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, account *Account) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
