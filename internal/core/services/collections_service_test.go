package services

import (
	"context"
	"testing"
	"time"

	"devicepay/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_DefaultsOverdueLoansAndLocksDevices(t *testing.T) {
	f := newFixture()
	collections := NewCollectionsService(f.loanRepo, f.txManager, 14)

	// Originated a year ago, so every installment is long past due
	f.origination.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	loan := originateActiveLoan(t, f, 3)

	defaulted, err := collections.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, defaulted)

	assert.Equal(t, models.LoanStatusDefaulted, f.store.loans[loan.ID].Status)
	assert.Equal(t, models.DeviceStatusLocked, f.store.devices[loan.DeviceID].Status)
}

func TestSweep_IgnoresLoansWithinGracePeriod(t *testing.T) {
	f := newFixture()
	collections := NewCollectionsService(f.loanRepo, f.txManager, 14)

	// First due date is one month out, nothing is overdue
	loan := originateActiveLoan(t, f, 3)

	defaulted, err := collections.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, defaulted)
	assert.Equal(t, models.LoanStatusActive, f.store.loans[loan.ID].Status)
}

func TestSweep_IgnoresPendingAndCompletedLoans(t *testing.T) {
	f := newFixture()
	collections := NewCollectionsService(f.loanRepo, f.txManager, 14)

	// Overdue ledger on a loan that was never activated
	f.origination.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	loan, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     1,
		DownPayment:  decimal.Zero,
		TenureMonths: 3,
	})
	require.NoError(t, err)

	defaulted, err := collections.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, defaulted)
	assert.Equal(t, models.LoanStatusPending, f.store.loans[loan.ID].Status)
}

func TestSweep_FailedLoanDoesNotBlockTheRest(t *testing.T) {
	f := newFixture()
	collections := NewCollectionsService(f.loanRepo, f.txManager, 14)

	f.origination.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	originateActiveLoan(t, f, 3)

	f.txManager.failOn = "UpdateLoanStatus"
	defaulted, err := collections.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, defaulted, "a failed default is skipped, not fatal")
}
