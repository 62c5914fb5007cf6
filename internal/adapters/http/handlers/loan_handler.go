package handlers

import (
	"devicepay/internal/adapters/http/middleware"
	"devicepay/internal/core/services"
	"devicepay/internal/pkg/pagination"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan origination and repayment endpoints
type LoanHandler struct {
	originationService *services.OriginationService
	repaymentService   *services.RepaymentService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(originationService *services.OriginationService, repaymentService *services.RepaymentService) *LoanHandler {
	return &LoanHandler{
		originationService: originationService,
		repaymentService:   repaymentService,
	}
}

// QuoteRequest represents quote request body
type QuoteRequest struct {
	ProductID    uint            `json:"product_id" validate:"required"`
	DownPayment  decimal.Decimal `json:"down_payment"`
	TenureMonths int             `json:"tenure_months" validate:"required,min=1"`
}

// OriginateRequest represents loan origination request body
type OriginateRequest struct {
	CustomerID   uint            `json:"customer_id" validate:"required"`
	ProductID    uint            `json:"product_id" validate:"required"`
	DeviceID     uint            `json:"device_id" validate:"required"`
	DownPayment  decimal.Decimal `json:"down_payment"`
	TenureMonths int             `json:"tenure_months" validate:"required,min=1"`
}

// Quote handles quote requests
// @Summary Quote a financing plan
// @Description Validate a financing request and return the amortization breakdown without committing anything
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QuoteRequest true "Quote parameters"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/quote [post]
func (h *LoanHandler) Quote(c *fiber.Ctx) error {
	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ProductID == 0 {
		return response.BadRequest(c, "Product ID is required")
	}

	result, err := h.originationService.Quote(c.Context(), &services.QuoteInput{
		ProductID:        req.ProductID,
		DownPayment:      req.DownPayment,
		TenureMonths:     req.TenureMonths,
		CallerMerchantID: middleware.CallerMerchantID(c),
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Quote computed", result)
}

// Originate handles loan origination
// @Summary Originate a loan
// @Description Commit a loan, its installment ledger and the device assignment atomically
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client-supplied dedupe token"
// @Param body body OriginateRequest true "Origination parameters"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Originate(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Origination requires a merchant account")
	}

	var req OriginateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CustomerID == 0 || req.ProductID == 0 || req.DeviceID == 0 {
		return response.BadRequest(c, "Customer, product and device IDs are required")
	}

	loan, err := h.originationService.Originate(c.Context(), &services.OriginateInput{
		MerchantID:     *merchantID,
		CustomerID:     req.CustomerID,
		ProductID:      req.ProductID,
		DeviceID:       req.DeviceID,
		DownPayment:    req.DownPayment,
		TenureMonths:   req.TenureMonths,
		IdempotencyKey: c.Get("Idempotency-Key"),
	})
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Loan originated", loan.ToResponse())
}

// GetLoan handles loan detail requests
// @Summary Get loan
// @Description Get a loan with its installment ledger
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.originationService.GetByID(c.Context(), uint(loanID), middleware.CallerMerchantID(c))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Loan retrieved", loan.ToResponse())
}

// ListLoans handles loan list requests
// @Summary List loans
// @Description List loans within the caller's merchant scope
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.originationService.List(
		c.Context(),
		middleware.CallerMerchantID(c),
		c.Query("status"),
		params.Offset,
		params.Limit,
	)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved", pagination.NewResponse(loans, params, total))
}

// GetInstallments handles installment ledger requests
// @Summary Get installment ledger
// @Description Get all installments of a loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/installments [get]
func (h *LoanHandler) GetInstallments(c *fiber.Ctx) error {
	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	installments, err := h.originationService.GetInstallments(c.Context(), uint(loanID), middleware.CallerMerchantID(c))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Installments retrieved", installments)
}

// Activate handles loan activation
// @Summary Activate a loan
// @Description Transition a pending loan to active after its down payment is confirmed
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/{id}/activate [post]
func (h *LoanHandler) Activate(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Activation requires a merchant account")
	}

	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.repaymentService.Activate(c.Context(), *merchantID, uint(loanID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Loan activated", loan.ToResponse())
}

// RecordPayment handles installment settlement
// @Summary Record an installment payment
// @Description Settle one installment; the last settlement completes the loan and releases the device
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param installmentID path int true "Installment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/{id}/installments/{installmentID}/pay [post]
func (h *LoanHandler) RecordPayment(c *fiber.Ctx) error {
	merchantID := middleware.CallerMerchantID(c)
	if merchantID == nil {
		return response.Forbidden(c, "Recording payments requires a merchant account")
	}

	loanID, err := c.ParamsInt("id")
	if err != nil || loanID < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}
	installmentID, err := c.ParamsInt("installmentID")
	if err != nil || installmentID < 1 {
		return response.BadRequest(c, "Invalid installment ID")
	}

	installment, err := h.repaymentService.RecordPayment(c.Context(), *merchantID, uint(loanID), uint(installmentID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Payment recorded", installment)
}
