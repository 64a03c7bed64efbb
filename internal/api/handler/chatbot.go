package handler

import (
	"net/http"
	"strconv"

	"github.com/Rrens/chatbot-pro/internal/api/middleware"
	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/Rrens/chatbot-pro/internal/domain"
	"github.com/Rrens/chatbot-pro/internal/service"
	"github.com/Rrens/chatbot-pro/internal/widget"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatbotHandler handles chatbot management endpoints
type ChatbotHandler struct {
	chatbotService *service.ChatbotService
	publicURL      string
}

// NewChatbotHandler creates a new chatbot handler. publicURL is the origin
// the embed snippet points at.
func NewChatbotHandler(chatbotService *service.ChatbotService, publicURL string) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService, publicURL: publicURL}
}

// List returns the account's chatbots
func (h *ChatbotHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatbots, err := h.chatbotService.List(r.Context(), accountID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, chatbots)
}

// Create registers a new chatbot
func (h *ChatbotHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ChatbotInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	chatbot, err := h.chatbotService.Create(r.Context(), accountID, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, chatbot)
}

// Get returns one chatbot
func (h *ChatbotHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	chatbot, err := h.chatbotService.Get(r.Context(), accountID, chatbotID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, chatbot)
}

// Update changes chatbot settings
func (h *ChatbotHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input domain.ChatbotInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	chatbot, err := h.chatbotService.Update(r.Context(), accountID, chatbotID, input)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, chatbot)
}

// Delete removes a chatbot
func (h *ChatbotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.chatbotService.Delete(r.Context(), accountID, chatbotID); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.NoContent(w)
}

// Toggle flips the chatbot's active flag
func (h *ChatbotHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	chatbot, err := h.chatbotService.ToggleActive(r.Context(), accountID, chatbotID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, chatbot)
}

// Embed returns the script tag to paste into a website
func (h *ChatbotHandler) Embed(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	chatbot, err := h.chatbotService.Get(r.Context(), accountID, chatbotID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, map[string]string{
		"lookup_code": chatbot.LookupCode,
		"snippet":     widget.Snippet(h.publicURL, chatbot.LookupCode),
	})
}

// Conversations lists the chatbot's conversations
func (h *ChatbotHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, err := h.chatbotService.ListConversations(r.Context(), accountID, chatbotID, limit, offset)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, conversations)
}

// Transcript returns one conversation with rendered messages
func (h *ChatbotHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	accountID, chatbotID, ok := h.ids(w, r)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	transcript, err := h.chatbotService.Transcript(r.Context(), accountID, conversationID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	if transcript.Conversation.ChatbotID != chatbotID {
		response.NotFound(w, "conversation not found")
		return
	}

	response.OK(w, transcript)
}

func (h *ChatbotHandler) ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	chatbotID, err := uuid.Parse(chi.URLParam(r, "chatbotID"))
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return uuid.Nil, uuid.Nil, false
	}

	return accountID, chatbotID, true
}
