package handlers

import (
	"errors"

	"devicepay/internal/core/services"
	"devicepay/internal/pkg/pagination"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MerchantHandler handles merchant onboarding endpoints (admin only)
type MerchantHandler struct {
	merchantService *services.MerchantService
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantService *services.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantService: merchantService}
}

// CreateMerchant handles merchant onboarding
// @Summary Onboard merchant
// @Description Register a new merchant on the platform
// @Tags Merchants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMerchantInput true "Merchant data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /merchants [post]
func (h *MerchantHandler) CreateMerchant(c *fiber.Ctx) error {
	var input services.CreateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Code == "" || input.Name == "" {
		return response.BadRequest(c, "Code and name are required")
	}

	merchant, err := h.merchantService.CreateMerchant(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrMerchantCodeExists) {
			return response.Conflict(c, "Merchant code already exists")
		}
		return response.InternalServerError(c, "Failed to onboard merchant")
	}

	return response.Created(c, "Merchant onboarded", merchant)
}

// GetMerchant handles merchant detail requests
// @Summary Get merchant
// @Tags Merchants
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /merchants/{id} [get]
func (h *MerchantHandler) GetMerchant(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	merchant, err := h.merchantService.GetMerchantByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return response.InternalServerError(c, "Failed to get merchant")
	}

	return response.Success(c, "Merchant retrieved", merchant)
}

// ListMerchants handles merchant list requests
// @Summary List merchants
// @Tags Merchants
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /merchants [get]
func (h *MerchantHandler) ListMerchants(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	merchants, total, err := h.merchantService.ListMerchants(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list merchants")
	}

	return response.Success(c, "Merchants retrieved", pagination.NewResponse(merchants, params, total))
}

// UpdateMerchant handles merchant updates
// @Summary Update merchant
// @Tags Merchants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merchant ID"
// @Param body body services.UpdateMerchantInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /merchants/{id} [patch]
func (h *MerchantHandler) UpdateMerchant(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid merchant ID")
	}

	var input services.UpdateMerchantInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	merchant, err := h.merchantService.UpdateMerchant(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return response.NotFound(c, "Merchant not found")
		}
		return response.InternalServerError(c, "Failed to update merchant")
	}

	return response.Success(c, "Merchant updated", merchant)
}
