package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	msgMissingFields   = "Message and sessionId are required"
	msgChatbotNotFound = "Chatbot not found or inactive"
	msgInternal        = "Internal server error"
	msgTooManyRequests = "Too many requests"
)

// maxChatBodyBytes caps the unauthenticated chat request body
const maxChatBodyBytes = 16 << 10

// ChatRequest is the body posted by the widget
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is returned to the widget on every handled relay
type ChatResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// PublicHandler serves the unauthenticated widget endpoints
type PublicHandler struct {
	relay    *service.RelayService
	chatbots *service.ChatbotService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(relay *service.RelayService, chatbots *service.ChatbotService) *PublicHandler {
	return &PublicHandler{relay: relay, chatbots: chatbots}
}

// Chat relays one visitor message to the model
func (h *PublicHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var input ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Public(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	result, err := h.relay.Relay(r.Context(), chi.URLParam(r, "lookupCode"), input.Message, input.SessionID)
	if err != nil {
		h.publicError(w, r, err)
		return
	}

	response.Raw(w, http.StatusOK, ChatResponse{Message: result.Reply, Success: result.Success})
}

// Config returns the widget configuration of an active chatbot
func (h *PublicHandler) Config(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.chatbots.PublicConfig(r.Context(), chi.URLParam(r, "lookupCode"))
	if err != nil {
		h.publicError(w, r, err)
		return
	}

	response.Raw(w, http.StatusOK, cfg)
}

func (h *PublicHandler) publicError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.Public(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, domain.ErrNotFound):
		response.Public(w, http.StatusNotFound, msgChatbotNotFound)
	default:
		log.Error().
			Err(err).
			Str("request_id", response.RequestID(r)).
			Str("path", r.URL.Path).
			Msg("Public request failed")
		response.Public(w, http.StatusInternalServerError, msgInternal)
	}
}

// RejectTooManyRequests writes the widget-facing 429 body
func RejectTooManyRequests(w http.ResponseWriter) {
	response.Public(w, http.StatusTooManyRequests, msgTooManyRequests)
}
