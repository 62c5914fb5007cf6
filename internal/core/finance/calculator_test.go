package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeSchedule(t *testing.T) {
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		price         string
		downPayment   string
		tenureMonths  int
		rate          string
		wantPrincipal string
		wantInterest  string
		wantTotal     string
		wantMonthly   string
		wantSum       string // sum of all installment amounts
	}{
		{
			name:          "round monthly amount, no drift",
			price:         "150000",
			downPayment:   "0",
			tenureMonths:  6,
			rate:          "5",
			wantPrincipal: "150000.00",
			wantInterest:  "45000.00",
			wantTotal:     "195000.00",
			wantMonthly:   "32500.00",
			wantSum:       "195000.00",
		},
		{
			name:          "down payment reduces principal, exact division",
			price:         "150000",
			downPayment:   "30000",
			tenureMonths:  6,
			rate:          "5",
			wantPrincipal: "120000.00",
			wantInterest:  "36000.00",
			wantTotal:     "156000.00",
			wantMonthly:   "26000.00",
			wantSum:       "156000.00",
		},
		{
			name:          "repeating decimal drifts one cent below total",
			price:         "100000",
			downPayment:   "0",
			tenureMonths:  3,
			rate:          "0",
			wantPrincipal: "100000.00",
			wantInterest:  "0.00",
			wantTotal:     "100000.00",
			wantMonthly:   "33333.33",
			// 3 x 33333.33 = 99999.99: the per-row rounding residual is
			// accepted, not folded into the final installment.
			wantSum: "99999.99",
		},
		{
			name:          "single installment",
			price:         "45000",
			downPayment:   "15000",
			tenureMonths:  1,
			rate:          "7.5",
			wantPrincipal: "30000.00",
			wantInterest:  "2250.00",
			wantTotal:     "32250.00",
			wantMonthly:   "32250.00",
			wantSum:       "32250.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ComputeSchedule(d(tt.price), d(tt.downPayment), tt.tenureMonths, d(tt.rate), start)

			assert.Equal(t, tt.wantPrincipal, res.Principal.StringFixed(2))
			assert.Equal(t, tt.wantInterest, res.TotalInterest.StringFixed(2))
			assert.Equal(t, tt.wantTotal, res.TotalRepayment.StringFixed(2))
			assert.Equal(t, tt.wantMonthly, res.MonthlyRepayment.StringFixed(2))

			require.Len(t, res.Schedule, tt.tenureMonths)

			sum := decimal.Zero
			for i, inst := range res.Schedule {
				assert.Equal(t, i+1, inst.Sequence)
				assert.Equal(t, tt.wantMonthly, inst.AmountDue.StringFixed(2))
				assert.True(t, inst.DueDate.Equal(start.AddDate(0, i+1, 0)),
					"installment %d due date", i+1)
				sum = sum.Add(inst.AmountDue)
			}
			assert.Equal(t, tt.wantSum, sum.StringFixed(2))
		})
	}
}

func TestComputeSchedule_Deterministic(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	first := ComputeSchedule(d("89999.99"), d("10000"), 9, d("4.25"), start)
	second := ComputeSchedule(d("89999.99"), d("10000"), 9, d("4.25"), start)

	require.Equal(t, first, second)
}

func TestComputeSchedule_DueDatesMonthlyCadence(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	res := ComputeSchedule(d("60000"), d("6000"), 12, d("3"), start)

	require.Len(t, res.Schedule, 12)
	prev := start
	for _, inst := range res.Schedule {
		assert.True(t, inst.DueDate.After(prev), "due dates must strictly increase")
		assert.True(t, inst.DueDate.Equal(prev.AddDate(0, 1, 0)))
		prev = inst.DueDate
	}
}

func TestComputeSchedule_MonetaryNonNegativity(t *testing.T) {
	start := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		price       string
		downPayment string
		tenure      int
		rate        string
	}{
		{"1000", "999.99", 1, "0"},
		{"75000", "0", 24, "2.5"},
		{"123456.78", "23456.78", 18, "6.9"},
	}

	for _, tt := range tests {
		res := ComputeSchedule(d(tt.price), d(tt.downPayment), tt.tenure, d(tt.rate), start)

		assert.True(t, res.Principal.IsPositive(), "principal > 0")
		assert.False(t, res.TotalInterest.IsNegative(), "total interest >= 0")
		assert.True(t, res.MonthlyRepayment.IsPositive(), "monthly repayment > 0")
	}
}
