package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/core/domain"
	"devicepay/internal/core/finance"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// idempotencyReservationTTL bounds how long a reservation fences retries
// when the first attempt dies without releasing it.
const idempotencyReservationTTL = 15 * time.Minute

// OriginationService validates financing requests against product- and
// merchant-defined constraints, computes the amortization schedule, and
// commits loan + installments + device assignment as one atomic unit.
//
// Merchant identity is always an explicit argument; the service never
// reads caller context from ambient state.
type OriginationService struct {
	productRepo  repositories.ProductRepository
	customerRepo repositories.CustomerRepository
	deviceRepo   repositories.DeviceRepository
	loanRepo     repositories.LoanRepository
	txManager    repositories.TxManager
	idempotency  repositories.IdempotencyStore // optional, may be nil
	now          func() time.Time
}

// NewOriginationService creates a new origination service. idempotency
// may be nil; originations then rely solely on the unique loan column.
func NewOriginationService(
	productRepo repositories.ProductRepository,
	customerRepo repositories.CustomerRepository,
	deviceRepo repositories.DeviceRepository,
	loanRepo repositories.LoanRepository,
	txManager repositories.TxManager,
	idempotency repositories.IdempotencyStore,
) *OriginationService {
	return &OriginationService{
		productRepo:  productRepo,
		customerRepo: customerRepo,
		deviceRepo:   deviceRepo,
		loanRepo:     loanRepo,
		txManager:    txManager,
		idempotency:  idempotency,
		now:          time.Now,
	}
}

// QuoteInput represents quote input. CallerMerchantID is nil for a
// platform-level caller, which may quote across merchants.
type QuoteInput struct {
	ProductID        uint
	DownPayment      decimal.Decimal
	TenureMonths     int
	CallerMerchantID *uint
}

// Quote validates a financing request against the product constraints and
// returns the amortization breakdown. No writes occur; the same
// calculator serves the final committed loan, so the quoted figures and
// the persisted ones are identical for identical inputs.
func (s *OriginationService) Quote(ctx context.Context, input *QuoteInput) (*finance.AmortizationResult, error) {
	product, err := s.fetchProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.CallerMerchantID != nil && product.MerchantID != *input.CallerMerchantID {
		return nil, domain.ScopeViolation("product belongs to a different merchant", map[string]interface{}{
			"product_id": product.ID,
		})
	}

	if err := validateFinancingConstraints(product, input.DownPayment, input.TenureMonths); err != nil {
		return nil, err
	}

	result := finance.ComputeSchedule(product.Price, input.DownPayment, input.TenureMonths, product.InterestRate, s.now())
	return &result, nil
}

// OriginateInput represents commit-mode input. MerchantID is mandatory:
// a commit is always merchant-scoped.
type OriginateInput struct {
	MerchantID     uint
	CustomerID     uint
	ProductID      uint
	DeviceID       uint
	DownPayment    decimal.Decimal
	TenureMonths   int
	IdempotencyKey string // optional client-supplied dedupe token
}

// Originate re-runs every quote validation plus cross-entity ownership
// checks, then commits the loan, its installment ledger and the device
// assignment atomically. Any failure leaves no trace.
func (s *OriginationService) Originate(ctx context.Context, input *OriginateInput) (*models.Loan, error) {
	// Replay: a completed origination under the same key returns the
	// already-created loan instead of a duplicate.
	if input.IdempotencyKey != "" {
		if existing, err := s.loanRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	product, err := s.fetchProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if product.MerchantID != input.MerchantID {
		return nil, domain.ScopeViolation("product belongs to a different merchant", map[string]interface{}{
			"product_id": product.ID,
		})
	}

	if err := validateFinancingConstraints(product, input.DownPayment, input.TenureMonths); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("customer", input.CustomerID)
		}
		return nil, err
	}
	if customer.MerchantID != input.MerchantID {
		return nil, domain.OwnershipViolation("customer belongs to a different merchant", map[string]interface{}{
			"customer_id": customer.ID,
		})
	}

	device, err := s.deviceRepo.GetByID(ctx, input.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("device", input.DeviceID)
		}
		return nil, err
	}
	// Unclaimed devices are not eligible: strict containment, no
	// auto-adoption into the originating merchant's inventory.
	if device.MerchantID == nil || *device.MerchantID != input.MerchantID {
		return nil, domain.OwnershipViolation("device does not belong to this merchant", map[string]interface{}{
			"device_id": device.ID,
		})
	}
	if device.Status != models.DeviceStatusInStock {
		return nil, domain.ConstraintViolation("device is not available for financing", map[string]interface{}{
			"device_id": device.ID,
			"status":    device.Status,
		})
	}

	reserved, replayed, err := s.reserveIdempotencyKey(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	startDate := s.now()
	result := finance.ComputeSchedule(product.Price, input.DownPayment, input.TenureMonths, product.InterestRate, startDate)

	loan := &models.Loan{
		ReferenceNo:     newLoanReference(),
		MerchantID:      input.MerchantID,
		CustomerID:      customer.ID,
		DeviceID:        device.ID,
		ProductID:       product.ID,
		PrincipalAmount: result.Principal,
		DownPayment:     input.DownPayment,
		InterestRate:    product.InterestRate, // snapshot, never re-read
		TotalAmount:     result.TotalRepayment,
		MonthlyAmount:   result.MonthlyRepayment,
		Currency:        product.Currency,
		TenureMonths:    input.TenureMonths,
		Status:          models.LoanStatusPending,
		StartDate:       startDate,
		EndDate:         startDate.AddDate(0, input.TenureMonths, 0),
	}
	if input.IdempotencyKey != "" {
		key := input.IdempotencyKey
		loan.IdempotencyKey = &key
	}

	// All validations passed before this point; the write phase never
	// starts on invalid input.
	err = s.txManager.WithinTransaction(ctx, func(stores repositories.TxStores) error {
		if err := stores.CreateLoan(ctx, loan); err != nil {
			return err
		}

		installments := make([]*models.Installment, 0, len(result.Schedule))
		for _, item := range result.Schedule {
			installments = append(installments, &models.Installment{
				LoanID:    loan.ID,
				Sequence:  item.Sequence,
				DueDate:   item.DueDate,
				AmountDue: item.AmountDue,
				Status:    models.InstallmentStatusPending,
			})
		}
		if err := stores.CreateInstallments(ctx, installments); err != nil {
			return err
		}

		return stores.AssignDevice(ctx, device.ID, customer.ID, models.DeviceStatusInStock, models.DeviceStatusFinanced)
	})
	if err != nil {
		if reserved {
			s.releaseIdempotencyKey(ctx, input.IdempotencyKey)
		}
		return nil, domain.TransactionFailure(err)
	}

	return loan, nil
}

// GetByID gets a loan within the caller's merchant scope
func (s *OriginationService) GetByID(ctx context.Context, id uint, callerMerchantID *uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("loan", id)
		}
		return nil, err
	}
	if callerMerchantID != nil && loan.MerchantID != *callerMerchantID {
		return nil, domain.ScopeViolation("loan belongs to a different merchant", map[string]interface{}{
			"loan_id": loan.ID,
		})
	}
	return loan, nil
}

// List lists loans within the caller's merchant scope
func (s *OriginationService) List(ctx context.Context, callerMerchantID *uint, status string, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, callerMerchantID, status, offset, limit)
}

// GetInstallments gets the installment ledger of a loan within scope
func (s *OriginationService) GetInstallments(ctx context.Context, loanID uint, callerMerchantID *uint) ([]*models.Installment, error) {
	if _, err := s.GetByID(ctx, loanID, callerMerchantID); err != nil {
		return nil, err
	}
	return s.loanRepo.GetInstallments(ctx, loanID)
}

func (s *OriginationService) fetchProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("product", id)
		}
		return nil, err
	}
	return product, nil
}

func (s *OriginationService) reserveIdempotencyKey(ctx context.Context, key string) (bool, *models.Loan, error) {
	if s.idempotency == nil || key == "" {
		return false, nil, nil
	}
	ok, err := s.idempotency.Reserve(ctx, key, idempotencyReservationTTL)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		// The holder may have finished between our replay check and the
		// reservation; return its loan if so.
		if existing, lookupErr := s.loanRepo.GetByIdempotencyKey(ctx, key); lookupErr == nil {
			return false, existing, nil
		}
		return false, nil, domain.DuplicateRequest(key)
	}
	return true, nil, nil
}

func (s *OriginationService) releaseIdempotencyKey(ctx context.Context, key string) {
	if s.idempotency == nil || key == "" {
		return
	}
	// Best effort: the TTL expires stale reservations anyway.
	_ = s.idempotency.Release(ctx, key)
}

// validateFinancingConstraints checks a financing request against the
// product's constraints. Reported violations carry the bound parameters
// so the caller can render an actionable message.
func validateFinancingConstraints(product *models.Product, downPayment decimal.Decimal, tenureMonths int) error {
	if tenureMonths < 1 {
		return domain.ConstraintViolation("tenure must be at least one month", map[string]interface{}{
			"requested": tenureMonths,
		})
	}
	if tenureMonths < product.MinTenure || tenureMonths > product.MaxTenure {
		return domain.ConstraintViolation("tenure is outside the allowed range", map[string]interface{}{
			"min_tenure": product.MinTenure,
			"max_tenure": product.MaxTenure,
			"requested":  tenureMonths,
		})
	}
	if downPayment.IsNegative() {
		return domain.ConstraintViolation("down payment cannot be negative", map[string]interface{}{
			"offered": downPayment,
		})
	}
	if downPayment.LessThan(product.MinDownPayment) {
		return domain.ConstraintViolation("down payment is below the product minimum", map[string]interface{}{
			"minimum": product.MinDownPayment,
			"offered": downPayment,
		})
	}
	// A fully paid "loan" is not a loan: the principal must stay
	// strictly positive.
	if downPayment.GreaterThanOrEqual(product.Price) {
		return domain.ConstraintViolation("down payment must be below the device price", map[string]interface{}{
			"price":   product.Price,
			"offered": downPayment,
		})
	}
	return nil
}

// newLoanReference generates a short human-readable loan reference
func newLoanReference() string {
	return "LN-" + strings.ToUpper(uuid.New().String()[:8])
}
