package services

import (
	"context"
	"testing"
	"time"

	"devicepay/internal/adapters/persistence/models"
	"devicepay/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
}

func TestOriginate_Success(t *testing.T) {
	f := newFixture()
	f.origination.now = fixedNow

	loan, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     1,
		DownPayment:  decimal.Zero,
		TenureMonths: 6,
	})
	require.NoError(t, err)
	require.NotNil(t, loan)

	assert.Equal(t, models.LoanStatusPending, loan.Status)
	assert.Equal(t, "150000", loan.PrincipalAmount.String())
	assert.Equal(t, "195000.00", loan.TotalAmount.StringFixed(2))
	assert.Equal(t, "32500.00", loan.MonthlyAmount.StringFixed(2))
	assert.Equal(t, "KES", loan.Currency)
	assert.NotEmpty(t, loan.ReferenceNo)

	// Loan, ledger and device assignment all committed together
	persisted, err := f.loanRepo.GetByID(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ReferenceNo, persisted.ReferenceNo)

	installments := f.store.installmentsForLoan(loan.ID)
	require.Len(t, installments, 6)
	sum := decimal.Zero
	for _, inst := range installments {
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		assert.False(t, inst.AmountDue.IsNegative())
		sum = sum.Add(inst.AmountDue)
	}
	assert.Equal(t, "195000.00", sum.StringFixed(2))

	device := f.store.devices[1]
	assert.Equal(t, models.DeviceStatusFinanced, device.Status)
	require.NotNil(t, device.CustomerID)
	assert.Equal(t, uint(1), *device.CustomerID)
}

func TestOriginate_QuoteCommitParity(t *testing.T) {
	f := newFixture()
	f.origination.now = fixedNow

	quote, err := f.origination.Quote(context.Background(), &QuoteInput{
		ProductID:        1,
		DownPayment:      d("30000"),
		TenureMonths:     6,
		CallerMerchantID: uintPtr(1),
	})
	require.NoError(t, err)

	loan, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     1,
		DownPayment:  d("30000"),
		TenureMonths: 6,
	})
	require.NoError(t, err)

	assert.True(t, quote.Principal.Equal(loan.PrincipalAmount))
	assert.True(t, quote.TotalRepayment.Equal(loan.TotalAmount))
	assert.True(t, quote.MonthlyRepayment.Equal(loan.MonthlyAmount))

	installments := f.store.installmentsForLoan(loan.ID)
	require.Len(t, installments, len(quote.Schedule))
}

func TestQuote_Scoping(t *testing.T) {
	f := newFixture()

	// Merchant 2 cannot quote merchant 1's product
	_, err := f.origination.Quote(context.Background(), &QuoteInput{
		ProductID:        1,
		DownPayment:      decimal.Zero,
		TenureMonths:     6,
		CallerMerchantID: uintPtr(2),
	})
	assert.True(t, domain.IsKind(err, domain.KindScopeViolation))

	// A platform caller has no merchant scope and may quote anything
	_, err = f.origination.Quote(context.Background(), &QuoteInput{
		ProductID:    1,
		DownPayment:  decimal.Zero,
		TenureMonths: 6,
	})
	assert.NoError(t, err)
}

func TestQuote_UnknownProduct(t *testing.T) {
	f := newFixture()

	_, err := f.origination.Quote(context.Background(), &QuoteInput{
		ProductID:    99,
		DownPayment:  decimal.Zero,
		TenureMonths: 6,
	})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestOriginate_FinancingConstraints(t *testing.T) {
	tests := []struct {
		name         string
		downPayment  decimal.Decimal
		tenureMonths int
	}{
		{"tenure of zero", decimal.Zero, 0},
		{"tenure one below product minimum", decimal.Zero, 2},
		{"tenure one above product maximum", decimal.Zero, 13},
		{"negative down payment", d("-1"), 6},
		{"down payment equal to price", d("150000"), 6},
		{"down payment above price", d("150001"), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.origination.Originate(context.Background(), &OriginateInput{
				MerchantID:   1,
				CustomerID:   1,
				ProductID:    1,
				DeviceID:     1,
				DownPayment:  tt.downPayment,
				TenureMonths: tt.tenureMonths,
			})
			assert.True(t, domain.IsKind(err, domain.KindConstraintViolation), "got %v", err)
			assert.Empty(t, f.store.loans, "no loan may be created on rejected input")
			assert.Equal(t, 0, f.txManager.calls, "rejected input must not reach the write phase")
		})
	}
}

func TestOriginate_TenureBoundariesAccepted(t *testing.T) {
	for _, tenure := range []int{3, 12} {
		f := newFixture()
		loan, err := f.origination.Originate(context.Background(), &OriginateInput{
			MerchantID:   1,
			CustomerID:   1,
			ProductID:    1,
			DeviceID:     1,
			DownPayment:  decimal.Zero,
			TenureMonths: tenure,
		})
		require.NoError(t, err)
		assert.Len(t, f.store.installmentsForLoan(loan.ID), tenure)
	}
}

func TestOriginate_BelowMinimumDownPayment(t *testing.T) {
	f := newFixture()
	f.store.products[1].MinDownPayment = d("10000")

	_, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     1,
		DownPayment:  d("9999.99"),
		TenureMonths: 6,
	})
	assert.True(t, domain.IsKind(err, domain.KindConstraintViolation))
}

func TestOriginate_CrossMerchantIsolation(t *testing.T) {
	tests := []struct {
		name  string
		input OriginateInput
		kind  domain.ErrorKind
	}{
		{
			name:  "product of another merchant",
			input: OriginateInput{MerchantID: 1, CustomerID: 1, ProductID: 2, DeviceID: 1, TenureMonths: 6},
			kind:  domain.KindScopeViolation,
		},
		{
			name:  "customer of another merchant",
			input: OriginateInput{MerchantID: 1, CustomerID: 2, ProductID: 1, DeviceID: 1, TenureMonths: 6},
			kind:  domain.KindOwnershipViolation,
		},
		{
			name:  "device of another merchant",
			input: OriginateInput{MerchantID: 1, CustomerID: 1, ProductID: 1, DeviceID: 2, TenureMonths: 6},
			kind:  domain.KindOwnershipViolation,
		},
		{
			name:  "unclaimed device",
			input: OriginateInput{MerchantID: 1, CustomerID: 1, ProductID: 1, DeviceID: 3, TenureMonths: 6},
			kind:  domain.KindOwnershipViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.input.DownPayment = decimal.Zero

			_, err := f.origination.Originate(context.Background(), &tt.input)
			assert.True(t, domain.IsKind(err, tt.kind), "got %v", err)
			assert.Empty(t, f.store.loans)
		})
	}
}

func TestOriginate_DeviceNotAvailable(t *testing.T) {
	f := newFixture()

	// Device 4 is already financed
	_, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     4,
		DownPayment:  decimal.Zero,
		TenureMonths: 6,
	})
	assert.True(t, domain.IsKind(err, domain.KindConstraintViolation))
	assert.Empty(t, f.store.loans)
}

func TestOriginate_MissingReferences(t *testing.T) {
	tests := []struct {
		name  string
		input OriginateInput
	}{
		{"unknown product", OriginateInput{MerchantID: 1, CustomerID: 1, ProductID: 99, DeviceID: 1, TenureMonths: 6}},
		{"unknown customer", OriginateInput{MerchantID: 1, CustomerID: 99, ProductID: 1, DeviceID: 1, TenureMonths: 6}},
		{"unknown device", OriginateInput{MerchantID: 1, CustomerID: 1, ProductID: 1, DeviceID: 99, TenureMonths: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.input.DownPayment = decimal.Zero

			_, err := f.origination.Originate(context.Background(), &tt.input)
			assert.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
		})
	}
}

func TestOriginate_RollbackLeavesNoTrace(t *testing.T) {
	for _, failOn := range []string{"CreateLoan", "CreateInstallments", "AssignDevice"} {
		t.Run(failOn, func(t *testing.T) {
			f := newFixture()
			f.txManager.failOn = failOn

			_, err := f.origination.Originate(context.Background(), &OriginateInput{
				MerchantID:   1,
				CustomerID:   1,
				ProductID:    1,
				DeviceID:     1,
				DownPayment:  decimal.Zero,
				TenureMonths: 6,
			})
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindTransactionFailure))

			assert.Empty(t, f.store.loans, "no loan may survive a rollback")
			assert.Empty(t, f.store.installments, "no installments may survive a rollback")
			assert.Equal(t, models.DeviceStatusInStock, f.store.devices[1].Status, "device must stay in stock after a rollback")
		})
	}
}

func TestOriginate_IdempotentReplay(t *testing.T) {
	f := newFixture()

	input := &OriginateInput{
		MerchantID:     1,
		CustomerID:     1,
		ProductID:      1,
		DeviceID:       1,
		DownPayment:    decimal.Zero,
		TenureMonths:   6,
		IdempotencyKey: "req-7f3a",
	}

	first, err := f.origination.Originate(context.Background(), input)
	require.NoError(t, err)

	second, err := f.origination.Originate(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "a replay must return the original loan")
	assert.Len(t, f.store.loans, 1)
}

func TestOriginate_InFlightDuplicateRejected(t *testing.T) {
	f := newFixture()

	// Key is reserved by an in-flight attempt that has not committed yet
	reserved, err := f.idempotency.Reserve(context.Background(), "req-busy", time.Minute)
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:     1,
		CustomerID:     1,
		ProductID:      1,
		DeviceID:       1,
		DownPayment:    decimal.Zero,
		TenureMonths:   6,
		IdempotencyKey: "req-busy",
	})
	assert.True(t, domain.IsKind(err, domain.KindDuplicateRequest))
}

func TestOriginate_ReservationReleasedOnFailure(t *testing.T) {
	f := newFixture()
	f.txManager.failOn = "AssignDevice"

	input := &OriginateInput{
		MerchantID:     1,
		CustomerID:     1,
		ProductID:      1,
		DeviceID:       1,
		DownPayment:    decimal.Zero,
		TenureMonths:   6,
		IdempotencyKey: "req-retry",
	}

	_, err := f.origination.Originate(context.Background(), input)
	require.Error(t, err)

	// The failed attempt must not fence out the retry
	f.txManager.failOn = ""
	loan, err := f.origination.Originate(context.Background(), input)
	require.NoError(t, err)
	assert.NotZero(t, loan.ID)
}

func TestGetByID_Scoping(t *testing.T) {
	f := newFixture()

	loan, err := f.origination.Originate(context.Background(), &OriginateInput{
		MerchantID:   1,
		CustomerID:   1,
		ProductID:    1,
		DeviceID:     1,
		DownPayment:  decimal.Zero,
		TenureMonths: 6,
	})
	require.NoError(t, err)

	_, err = f.origination.GetByID(context.Background(), loan.ID, uintPtr(1))
	assert.NoError(t, err)

	_, err = f.origination.GetByID(context.Background(), loan.ID, uintPtr(2))
	assert.True(t, domain.IsKind(err, domain.KindScopeViolation))

	// Platform caller sees everything
	_, err = f.origination.GetByID(context.Background(), loan.ID, nil)
	assert.NoError(t, err)
}
