package handlers

import (
	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/core/services"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// AdminDashboard handles platform dashboard requests (admin only)
// @Summary Platform dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", data)
}

// MerchantDashboard handles merchant portfolio dashboard requests
// @Summary Merchant dashboard
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) MerchantDashboard(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Dashboard requires a merchant account")
	}

	data, err := h.dashboardService.GetMerchantDashboard(c.Context(), *merchantID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved", data)
}
