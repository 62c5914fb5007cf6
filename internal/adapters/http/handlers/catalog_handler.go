package handlers

import (
	"errors"

	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/core/services"
	"devicepay/internal/pkg/pagination"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles product catalog endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateProduct handles product creation
// @Summary Create product
// @Description Add a financeable device model to the caller's catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateProductInput true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Catalog management requires a merchant account")
	}

	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Name == "" {
		return response.BadRequest(c, "Product name is required")
	}

	product, err := h.catalogService.CreateProduct(c.Context(), *merchantID, &input)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Created(c, "Product created", product)
}

// GetProduct handles product detail requests
// @Summary Get product
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.catalogService.GetProduct(c.Context(), uint(id), middleware.CallerMerchantID(c))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Product retrieved", product)
}

// ListProducts handles product list requests
// @Summary List products
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	products, total, err := h.catalogService.ListProducts(c.Context(), middleware.CallerMerchantID(c), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved", pagination.NewResponse(products, params, total))
}

// UpdateProduct handles product updates
// @Summary Update product
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body services.UpdateProductInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [patch]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid product ID")
	}

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.catalogService.UpdateProduct(c.Context(), uint(id), middleware.CallerMerchantID(c), &input)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Product updated", product)
}

// DeleteProduct handles product removal
// @Summary Delete product
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid product ID")
	}

	if err := h.catalogService.DeleteProduct(c.Context(), uint(id), middleware.CallerMerchantID(c)); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Product deleted", nil)
}
