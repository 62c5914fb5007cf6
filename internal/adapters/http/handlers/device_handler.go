package handlers

import (
	"errors"

	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/core/services"
	"devicepay/internal/pkg/pagination"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DeviceHandler handles device registry endpoints
type DeviceHandler struct {
	deviceService *services.DeviceService
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(deviceService *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: deviceService}
}

// RegisterDevice handles device intake
// @Summary Register device
// @Description Add a handset to the caller's sellable inventory
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterDeviceInput true "Device data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /devices [post]
func (h *DeviceHandler) RegisterDevice(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Device registration requires a merchant account")
	}

	var input services.RegisterDeviceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.IMEI == "" {
		return response.BadRequest(c, "IMEI is required")
	}

	device, err := h.deviceService.RegisterDevice(c.Context(), *merchantID, &input)
	if err != nil {
		if errors.Is(err, services.ErrIMEIAlreadyKnown) {
			return response.Conflict(c, "IMEI already registered")
		}
		return response.InternalServerError(c, "Failed to register device")
	}

	return response.Created(c, "Device registered", device)
}

// GetDevice handles device detail requests
// @Summary Get device
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Device ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid device ID")
	}

	device, err := h.deviceService.GetDevice(c.Context(), uint(id), middleware.CallerMerchantID(c))
	if err != nil {
		if errors.Is(err, services.ErrDeviceNotFound) {
			return response.NotFound(c, "Device not found")
		}
		return response.DomainError(c, err)
	}

	return response.Success(c, "Device retrieved", device)
}

// ListDevices handles device list requests
// @Summary List devices
// @Tags Devices
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	devices, total, err := h.deviceService.ListDevices(
		c.Context(),
		middleware.CallerMerchantID(c),
		c.Query("status"),
		params.Offset,
		params.Limit,
	)
	if err != nil {
		return response.InternalServerError(c, "Failed to list devices")
	}

	return response.Success(c, "Devices retrieved", pagination.NewResponse(devices, params, total))
}

// GetStatusByIMEI handles lock-state polls from device agents
// @Summary Get device lock state
// @Description Resolve a handset's financing status; a locked=true response instructs the agent to restrict the device
// @Tags Devices
// @Produce json
// @Param imei path string true "Device IMEI"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /devices/imei/{imei}/status [get]
func (h *DeviceHandler) GetStatusByIMEI(c *fiber.Ctx) error {
	imei := c.Params("imei")
	if imei == "" {
		return response.BadRequest(c, "IMEI is required")
	}

	status, err := h.deviceService.GetStatusByIMEI(c.Context(), imei)
	if err != nil {
		if errors.Is(err, services.ErrDeviceNotFound) {
			return response.NotFound(c, "Device not found")
		}
		return response.InternalServerError(c, "Failed to resolve device status")
	}

	return response.Success(c, "Device status retrieved", status)
}
