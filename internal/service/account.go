package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles authentication and account settings
type AccountService struct {
	accounts   domain.AccountRepository
	chatbots   domain.ChatbotRepository
	cache      ConfigCache
	jwtManager *security.JWTManager
}

// NewAccountService creates a new account service
func NewAccountService(
	accounts domain.AccountRepository,
	chatbots domain.ChatbotRepository,
	cache ConfigCache,
	jwtManager *security.JWTManager,
) *AccountService {
	if cache == nil {
		cache = NopConfigCache{}
	}
	return &AccountService{
		accounts:   accounts,
		chatbots:   chatbots,
		cache:      cache,
		jwtManager: jwtManager,
	}
}

// Register creates a new account
func (s *AccountService) Register(ctx context.Context, input domain.AccountCreate) (*domain.Account, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index still guards against a concurrent registration
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Str("account_id", account.ID.String()).Msg("Account registered")
	return account, nil
}

// Login authenticates an account and returns tokens
func (s *AccountService) Login(ctx context.Context, input domain.AccountLogin) (*domain.TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	return s.issueTokens(account)
}

// Refresh exchanges a refresh token for a new token pair
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	accountID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrUnauthorized)
	}

	return s.issueTokens(account)
}

// Get returns the account by ID
func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return account, nil
}

// CompleteOnboarding stores the business profile and marks the account onboarded
func (s *AccountService) CompleteOnboarding(ctx context.Context, accountID uuid.UUID, input domain.Onboarding) (*domain.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.BusinessName = strings.TrimSpace(input.BusinessName)
	account.Website = strings.TrimSpace(input.Website)
	account.ProductCount = input.ProductCount
	account.ReferralSource = input.ReferralSource
	account.IsOnboarded = true
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// UpdateProfile changes name, email and business details
func (s *AccountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input domain.ProfileUpdate) (*domain.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if email != account.Email {
		other, err := s.accounts.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if other != nil {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
	}

	account.Name = strings.TrimSpace(input.Name)
	account.Email = email
	account.BusinessName = strings.TrimSpace(input.BusinessName)
	account.Website = strings.TrimSpace(input.Website)
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// ChangePassword replaces the password after verifying the current one
func (s *AccountService) ChangePassword(ctx context.Context, accountID uuid.UUID, input domain.PasswordChange) error {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Delete removes the account and everything it owns
func (s *AccountService) Delete(ctx context.Context, accountID uuid.UUID, input domain.AccountDeletion) error {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return fmt.Errorf("password is incorrect: %w", domain.ErrValidation)
	}

	// Chatbots go with the account, so their cached widget configs must too
	owned, err := s.chatbots.ListByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list chatbots: %w", err)
	}

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	for _, chatbot := range owned {
		invalidateConfig(ctx, s.cache, chatbot.LookupCode)
	}

	log.Info().Str("account_id", accountID.String()).Msg("Account deleted")
	return nil
}

func (s *AccountService) issueTokens(account *domain.Account) (*domain.TokenPair, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
