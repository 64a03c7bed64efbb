package handler

import (
	"net/http"

	"github.com/Rrens/chatbot-pro/internal/api/middleware"
	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/Rrens/chatbot-pro/internal/service"
)

// DashboardHandler serves the account overview
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview returns stats and recent activity
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	overview, err := h.dashboardService.Overview(r.Context(), accountID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, overview)
}
