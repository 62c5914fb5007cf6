package repositories

import (
	"context"
	"time"

	"devicepay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// GetByID gets a loan by ID with installments and relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Device").
		Preload("Product").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installments.sequence ASC")
		}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByIdempotencyKey gets the loan created under a client idempotency key
func (r *loanRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("installments.sequence ASC")
		}).
		Where("idempotency_key = ?", key).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans with pagination, optionally filtered by merchant and status
func (r *loanRepository) List(ctx context.Context, merchantID *uint, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if merchantID != nil {
		query = query.Where("merchant_id = ?", *merchantID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Preload("Customer").
		Preload("Product").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// GetInstallments gets the installment ledger of a loan in sequence order
func (r *loanRepository) GetInstallments(ctx context.Context, loanID uint) ([]*models.Installment, error) {
	var installments []*models.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence ASC").
		Find(&installments).Error
	return installments, err
}

// GetInstallment gets a single installment by ID
func (r *loanRepository) GetInstallment(ctx context.Context, id uint) (*models.Installment, error) {
	var installment models.Installment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&installment).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

// ListOverdueActive lists ACTIVE loans with at least one unpaid
// installment due before the cutoff. Consumed by the collections sweep.
func (r *loanRepository) ListOverdueActive(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Distinct("loans.*").
		Joins("JOIN installments ON installments.loan_id = loans.id").
		Where("loans.status = ?", models.LoanStatusActive).
		Where("installments.status = ?", models.InstallmentStatusPending).
		Where("installments.due_date < ?", cutoff).
		Find(&loans).Error
	return loans, err
}
