// Package finance holds the amortization math for device financing.
// Everything here is a pure transform on decimal values: no I/O, no
// clock reads beyond the explicit start date, so the same call serves
// both a non-committing quote and the final persisted loan.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ScheduledInstallment is one monthly repayment obligation in a computed
// schedule, before persistence.
type ScheduledInstallment struct {
	Sequence  int             `json:"sequence"`
	DueDate   time.Time       `json:"due_date"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

// AmortizationResult is the financial breakdown of a flat-rate loan plus
// its per-installment schedule.
type AmortizationResult struct {
	Principal        decimal.Decimal        `json:"principal"`
	TotalInterest    decimal.Decimal        `json:"total_interest"`
	TotalRepayment   decimal.Decimal        `json:"total_repayment"`
	MonthlyRepayment decimal.Decimal        `json:"monthly_repayment"`
	Schedule         []ScheduledInstallment `json:"schedule"`
}

// ComputeSchedule computes a flat-rate amortization: interest is charged
// once on the full principal for the full tenure, not on a declining
// balance.
//
//	principal      = price - downPayment
//	totalInterest  = principal * (rate/100) * tenureMonths
//	totalRepayment = principal + totalInterest
//	monthly        = round2(totalRepayment / tenureMonths)
//
// The monthly amount is rounded half-up to 2 decimal places and applied
// identically to every installment. The sum of installments may therefore
// drift from totalRepayment by up to half a cent per installment; the
// residual is NOT folded into the last installment.
//
// Inputs are assumed pre-validated by the caller: tenureMonths >= 1 and
// price > downPayment. ComputeSchedule performs no constraint checking.
func ComputeSchedule(price, downPayment decimal.Decimal, tenureMonths int, interestRatePercent decimal.Decimal, startDate time.Time) AmortizationResult {
	tenure := decimal.NewFromInt(int64(tenureMonths))

	principal := price.Sub(downPayment)
	monthlyRate := interestRatePercent.Div(oneHundred)
	totalInterest := principal.Mul(monthlyRate).Mul(tenure)
	totalRepayment := principal.Add(totalInterest)
	monthlyRepayment := totalRepayment.Div(tenure).Round(2)

	schedule := make([]ScheduledInstallment, 0, tenureMonths)
	for i := 1; i <= tenureMonths; i++ {
		schedule = append(schedule, ScheduledInstallment{
			Sequence:  i,
			DueDate:   addCalendarMonths(startDate, i),
			AmountDue: monthlyRepayment,
		})
	}

	return AmortizationResult{
		Principal:        principal,
		TotalInterest:    totalInterest,
		TotalRepayment:   totalRepayment,
		MonthlyRepayment: monthlyRepayment,
		Schedule:         schedule,
	}
}

// addCalendarMonths advances a date by whole calendar months. Month-end
// overflow follows time.AddDate normalization (Jan 31 + 1 month = Mar 2/3).
func addCalendarMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}
