package handler

import (
	"net/http"

	"github.com/Rrens/chatbot-pro/internal/api/middleware"
	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/service"
)

// AuthHandler handles authentication and account endpoints
type AuthHandler struct {
	accountService *service.AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// Register handles account registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.AccountCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	account, err := h.accountService.Register(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
	})
}

// Login handles account login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.AccountLogin
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tokens, err := h.accountService.Login(r.Context(), input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if !decodeAndValidate(w, r, &input) {
		return
	}

	tokens, err := h.accountService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, tokens)
}

// Me returns the current authenticated account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	account, err := h.accountService.Get(r.Context(), accountID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, account)
}

// Onboarding stores the business profile
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.Onboarding
	if !decodeAndValidate(w, r, &input) {
		return
	}

	account, err := h.accountService.CompleteOnboarding(r.Context(), accountID, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, account)
}

// UpdateProfile changes account settings
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ProfileUpdate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	account, err := h.accountService.UpdateProfile(r.Context(), accountID, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, account)
}

// ChangePassword replaces the account password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.PasswordChange
	if !decodeAndValidate(w, r, &input) {
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), accountID, input); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, map[string]string{"message": "password updated"})
}

// DeleteAccount removes the account and everything it owns
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.AccountDeletion
	if !decodeAndValidate(w, r, &input) {
		return
	}

	if err := h.accountService.Delete(r.Context(), accountID, input); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.NoContent(w)
}
