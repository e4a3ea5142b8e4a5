package loans

import (
	"math"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// ApplyPayment returns the balance left after this month's interest accrues
// and payment is applied. It never goes below zero.
func ApplyPayment(balance, payment, interest float64) float64 {
	return mathutil.Max(0, mathutil.Round(balance+interest-payment))
}

// IsPaidOff reports whether a balance is small enough to treat as retired.
func IsPaidOff(balance float64) bool {
	return balance <= constants.PaidOffThreshold
}

// IsPayable reports whether payment strictly exceeds the first month's
// interest, i.e. whether the balance can ever amortize.
func IsPayable(balance, annualRate, payment float64) bool {
	if IsPaidOff(balance) {
		return true
	}
	return payment > MonthlyInterest(balance, annualRate)
}

// MinimumViablePayment is the smallest whole-currency payment that reduces
// the balance: one unit above the monthly interest, rounded up.
func MinimumViablePayment(balance, annualRate float64) float64 {
	return math.Ceil(MonthlyInterest(balance, annualRate) + 1)
}
