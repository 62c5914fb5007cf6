package services

import (
	"context"
	"errors"
	"time"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/adapters/persistence/repositories"
	"devicepay/internal/core/domain"

	"gorm.io/gorm"
)

// RepaymentService records repayment state transitions on existing loans:
// activation after down-payment confirmation, installment settlement and
// loan completion. How a payment confirmation arrives (gateway, webhook,
// cash at the counter) is outside this service; it only owns the
// transitions.
type RepaymentService struct {
	loanRepo  repositories.LoanRepository
	txManager repositories.TxManager
	now       func() time.Time
}

// NewRepaymentService creates a new repayment service
func NewRepaymentService(loanRepo repositories.LoanRepository, txManager repositories.TxManager) *RepaymentService {
	return &RepaymentService{
		loanRepo:  loanRepo,
		txManager: txManager,
		now:       time.Now,
	}
}

// Activate transitions a loan PENDING -> ACTIVE once its down payment is
// confirmed.
func (s *RepaymentService) Activate(ctx context.Context, merchantID, loanID uint) (*models.Loan, error) {
	loan, err := s.fetchScopedLoan(ctx, merchantID, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != models.LoanStatusPending {
		return nil, domain.ConstraintViolation("only a pending loan can be activated", map[string]interface{}{
			"loan_id": loan.ID,
			"status":  loan.Status,
		})
	}

	err = s.txManager.WithinTransaction(ctx, func(stores repositories.TxStores) error {
		return stores.UpdateLoanStatus(ctx, loan.ID, models.LoanStatusActive)
	})
	if err != nil {
		return nil, domain.TransactionFailure(err)
	}

	loan.Status = models.LoanStatusActive
	return loan, nil
}

// RecordPayment settles one installment (PENDING -> PAID, one-way). When
// the last installment settles, the loan completes and the device is
// released to the customer in the same transaction.
func (s *RepaymentService) RecordPayment(ctx context.Context, merchantID, loanID, installmentID uint) (*models.Installment, error) {
	loan, err := s.fetchScopedLoan(ctx, merchantID, loanID)
	if err != nil {
		return nil, err
	}

	if loan.Status != models.LoanStatusActive {
		return nil, domain.ConstraintViolation("loan is not active", map[string]interface{}{
			"loan_id": loan.ID,
			"status":  loan.Status,
		})
	}

	installment, err := s.loanRepo.GetInstallment(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("installment", installmentID)
		}
		return nil, err
	}
	if installment.LoanID != loan.ID {
		return nil, domain.ConstraintViolation("installment does not belong to this loan", map[string]interface{}{
			"installment_id": installment.ID,
			"loan_id":        loan.ID,
		})
	}
	if installment.Status != models.InstallmentStatusPending {
		return nil, domain.ConstraintViolation("installment is already settled", map[string]interface{}{
			"installment_id": installment.ID,
		})
	}

	paidAt := s.now()
	err = s.txManager.WithinTransaction(ctx, func(stores repositories.TxStores) error {
		if err := stores.MarkInstallmentPaid(ctx, installment.ID, paidAt); err != nil {
			return err
		}

		remaining, err := stores.CountPendingInstallments(ctx, loan.ID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		if err := stores.UpdateLoanStatus(ctx, loan.ID, models.LoanStatusCompleted); err != nil {
			return err
		}
		return stores.UpdateDeviceStatus(ctx, loan.DeviceID, models.DeviceStatusReleased)
	})
	if err != nil {
		return nil, domain.TransactionFailure(err)
	}

	installment.Status = models.InstallmentStatusPaid
	installment.PaidAt = &paidAt
	return installment, nil
}

func (s *RepaymentService) fetchScopedLoan(ctx context.Context, merchantID, loanID uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("loan", loanID)
		}
		return nil, err
	}
	if loan.MerchantID != merchantID {
		return nil, domain.ScopeViolation("loan belongs to a different merchant", map[string]interface{}{
			"loan_id": loan.ID,
		})
	}
	return loan, nil
}
