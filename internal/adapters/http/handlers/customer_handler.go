package handlers

import (
	"errors"

	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/core/services"
	"devicepay/internal/pkg/pagination"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer directory endpoints
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomer handles customer registration
// @Summary Register customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCustomerInput true "Customer data"
// @Success 201 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Customer registration requires a merchant account")
	}

	var input services.CreateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.FullName == "" || input.Phone == "" {
		return response.BadRequest(c, "Full name and phone are required")
	}

	customer, err := h.customerService.CreateCustomer(c.Context(), *merchantID, &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to register customer")
	}

	return response.Created(c, "Customer registered", customer)
}

// GetCustomer handles customer detail requests
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetCustomer(c.Context(), uint(id), middleware.CallerMerchantID(c))
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Customer retrieved", customer)
}

// ListCustomers handles customer list requests
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Customer listing requires a merchant account")
	}

	params := pagination.GetParams(c)

	customers, total, err := h.customerService.ListCustomers(c.Context(), *merchantID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved", pagination.NewResponse(customers, params, total))
}

// UpdateCustomer handles customer updates
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param body body services.UpdateCustomerInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [patch]
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	var input services.UpdateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.customerService.UpdateCustomer(c.Context(), uint(id), middleware.CallerMerchantID(c), &input)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Customer updated", customer)
}
