package repositories

import (
	"context"
	"fmt"
	"time"

	"devicepay/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// gormTxManager implements TxManager on a gorm transaction. The closure
// either commits every write or rolls all of them back; isolation is
// delegated to the database (read-committed or stricter).
type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithinTransaction runs fn inside a single database transaction
func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(stores TxStores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxStores{tx: tx})
	})
}

// gormTxStores implements TxStores on an open transaction handle
type gormTxStores struct {
	tx *gorm.DB
}

// CreateLoan creates a loan row; the generated ID is written back to loan
func (s *gormTxStores) CreateLoan(ctx context.Context, loan *models.Loan) error {
	return s.tx.WithContext(ctx).Create(loan).Error
}

// CreateInstallments bulk-creates the installment ledger of a loan
func (s *gormTxStores) CreateInstallments(ctx context.Context, installments []*models.Installment) error {
	return s.tx.WithContext(ctx).Create(installments).Error
}

// AssignDevice binds the financed customer and transitions the device
// status. The WHERE predicate on the previous status makes this the race
// guard for two originations over one device: the loser updates zero rows
// and the whole transaction rolls back.
func (s *gormTxStores) AssignDevice(ctx context.Context, deviceID, customerID uint, fromStatus, toStatus string) error {
	result := s.tx.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ? AND status = ?", deviceID, fromStatus).
		Updates(map[string]interface{}{
			"customer_id": customerID,
			"status":      toStatus,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("device %d is no longer %s", deviceID, fromStatus)
	}
	return nil
}

// UpdateDeviceStatus transitions a device status unconditionally
func (s *gormTxStores) UpdateDeviceStatus(ctx context.Context, deviceID uint, status string) error {
	return s.tx.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("status", status).Error
}

// UpdateLoanStatus transitions a loan status
func (s *gormTxStores) UpdateLoanStatus(ctx context.Context, loanID uint, status string) error {
	return s.tx.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", loanID).
		Update("status", status).Error
}

// MarkInstallmentPaid transitions an installment PENDING -> PAID. The
// status predicate keeps the transition one-way.
func (s *gormTxStores) MarkInstallmentPaid(ctx context.Context, installmentID uint, paidAt time.Time) error {
	result := s.tx.WithContext(ctx).
		Model(&models.Installment{}).
		Where("id = ? AND status = ?", installmentID, models.InstallmentStatusPending).
		Updates(map[string]interface{}{
			"status":  models.InstallmentStatusPaid,
			"paid_at": &paidAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("installment %d is not pending", installmentID)
	}
	return nil
}

// CountPendingInstallments counts unpaid installments of a loan
func (s *gormTxStores) CountPendingInstallments(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := s.tx.WithContext(ctx).
		Model(&models.Installment{}).
		Where("loan_id = ? AND status = ?", loanID, models.InstallmentStatusPending).
		Count(&count).Error
	return count, err
}
