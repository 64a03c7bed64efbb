package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	AccountIDKey    contextKey = "accountID"
	AccountEmailKey contextKey = "accountEmail"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *security.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the JWT access token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDKey, claims.AccountID)
		ctx = context.WithValue(ctx, AccountEmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAccountID gets the account ID from context
func GetAccountID(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(AccountIDKey).(uuid.UUID)
	return accountID, ok
}

// GetAccountEmail gets the account email from context
func GetAccountEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AccountEmailKey).(string)
	return email, ok
}

// OnboardingMiddleware blocks accounts that have not finished onboarding
type OnboardingMiddleware struct {
	accounts domain.AccountRepository
}

// NewOnboardingMiddleware creates a new onboarding middleware
func NewOnboardingMiddleware(accounts domain.AccountRepository) *OnboardingMiddleware {
	return &OnboardingMiddleware{accounts: accounts}
}

// Require rejects the request with 403 unless the account is onboarded
func (m *OnboardingMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountID(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		account, err := m.accounts.GetByID(r.Context(), accountID)
		if err != nil {
			log.Error().Err(err).Str("request_id", response.RequestID(r)).Msg("Failed to load account")
			response.InternalError(w, "internal server error")
			return
		}
		if account == nil {
			response.Unauthorized(w, "account not found")
			return
		}
		if !account.IsOnboarded {
			response.Forbidden(w, "onboarding required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
