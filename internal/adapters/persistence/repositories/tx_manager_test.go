package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"devicepay/internal/adapters/persistence/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func testLoan() *models.Loan {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	return &models.Loan{
		ReferenceNo:     "LN-TEST0001",
		MerchantID:      1,
		CustomerID:      1,
		DeviceID:        1,
		ProductID:       1,
		PrincipalAmount: decimal.RequireFromString("150000"),
		DownPayment:     decimal.Zero,
		InterestRate:    decimal.RequireFromString("5"),
		TotalAmount:     decimal.RequireFromString("195000"),
		MonthlyAmount:   decimal.RequireFromString("32500"),
		Currency:        "KES",
		TenureMonths:    6,
		Status:          models.LoanStatusPending,
		StartDate:       now,
		EndDate:         now.AddDate(0, 6, 0),
	}
}

func TestWithinTransaction_CommitsAllWrites(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `loans`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `installments`").WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("UPDATE `devices`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loan := testLoan()
	err := manager.WithinTransaction(context.Background(), func(stores TxStores) error {
		if err := stores.CreateLoan(context.Background(), loan); err != nil {
			return err
		}
		installments := []*models.Installment{
			{LoanID: loan.ID, Sequence: 1, DueDate: loan.StartDate.AddDate(0, 1, 0), AmountDue: loan.MonthlyAmount, Status: models.InstallmentStatusPending},
			{LoanID: loan.ID, Sequence: 2, DueDate: loan.StartDate.AddDate(0, 2, 0), AmountDue: loan.MonthlyAmount, Status: models.InstallmentStatusPending},
		}
		if err := stores.CreateInstallments(context.Background(), installments); err != nil {
			return err
		}
		return stores.AssignDevice(context.Background(), 1, 1, models.DeviceStatusInStock, models.DeviceStatusFinanced)
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), loan.ID, "generated loan ID is written back")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransaction_RollsBackWhenDeviceAlreadyClaimed(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `loans`").WillReturnResult(sqlmock.NewResult(7, 1))
	// A concurrent origination already moved the device out of IN_STOCK,
	// so the conditional update matches zero rows
	mock.ExpectExec("UPDATE `devices`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := manager.WithinTransaction(context.Background(), func(stores TxStores) error {
		if err := stores.CreateLoan(context.Background(), testLoan()); err != nil {
			return err
		}
		return stores.AssignDevice(context.Background(), 1, 1, models.DeviceStatusInStock, models.DeviceStatusFinanced)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTransaction_RollsBackOnInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)

	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `loans`").WillReturnError(dbErr)
	mock.ExpectRollback()

	err := manager.WithinTransaction(context.Background(), func(stores TxStores) error {
		return stores.CreateLoan(context.Background(), testLoan())
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkInstallmentPaid_RejectsSettledInstallment(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)

	mock.ExpectBegin()
	// Already PAID, the status predicate matches zero rows
	mock.ExpectExec("UPDATE `installments`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := manager.WithinTransaction(context.Background(), func(stores TxStores) error {
		return stores.MarkInstallmentPaid(context.Background(), 42, time.Now())
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not pending")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountPendingInstallments(t *testing.T) {
	db, mock := newMockDB(t)
	manager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	var remaining int64
	err := manager.WithinTransaction(context.Background(), func(stores TxStores) error {
		var err error
		remaining, err = stores.CountPendingInstallments(context.Background(), 7)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}
