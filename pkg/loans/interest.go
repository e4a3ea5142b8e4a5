// Package loans provides the interest and payment arithmetic shared by the
// simulation engine and the amortization schedule builder.
package loans

import (
	"math"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualRate float64) float64 {
	return annualRate / constants.MonthlyRateDivisor
}

// MonthlyInterest returns one month of interest, rounded to cents.
func MonthlyInterest(balance, annualRate float64) float64 {
	if annualRate == 0 || balance <= 0 {
		return 0
	}
	return mathutil.Round(balance * MonthlyRate(annualRate))
}

// PrincipalFromTotal recovers the principal of a loan whose quoted balance
// already includes all future interest. It is the present value of months
// payments at annualRate, capped at totalWithInterest. The boolean is false
// when the inputs cannot produce an estimate.
func PrincipalFromTotal(totalWithInterest, annualRate, monthlyPayment float64, months int) (float64, bool) {
	if totalWithInterest <= 0 || monthlyPayment <= 0 || months <= 0 || annualRate < 0 {
		return 0, false
	}

	var principal float64
	if annualRate == 0 {
		principal = monthlyPayment * float64(months)
	} else {
		r := MonthlyRate(annualRate)
		principal = monthlyPayment * (1 - math.Pow(1+r, -float64(months))) / r
	}
	if math.IsNaN(principal) || math.IsInf(principal, 0) {
		return 0, false
	}
	return mathutil.Round(mathutil.Min(principal, totalWithInterest)), true
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// MonthsToPayoff returns the number of fixed monthly payments needed to
// retire balance. Zero-interest balances use ceil(balance/payment) since the
// logarithmic form divides by log(1+rate). The boolean is false when the
// payment never covers the interest.
func MonthsToPayoff(balance, annualRate, payment float64) (int, bool) {
	if balance <= constants.PaidOffThreshold {
		return 0, true
	}
	if payment <= 0 {
		return 0, false
	}
	if annualRate == 0 {
		return int(math.Ceil(balance/payment - 1e-9)), true
	}

	r := MonthlyRate(annualRate)
	if payment <= balance*r {
		return 0, false
	}
	n := -math.Log(1-r*balance/payment) / math.Log(1+r)
	return int(math.Ceil(n - 1e-9)), true
}

// EstimateInterestRate back-solves the APR of an amortizing loan from its
// principal, payment and remaining term by bisection on the annuity formula.
// The boolean is false when no rate in [0, MaxEstimatedRate] fits.
func EstimateInterestRate(principal, monthlyPayment float64, months int) (float64, bool) {
	if principal <= 0 || monthlyPayment <= 0 || months <= 0 {
		return 0, false
	}

	total := monthlyPayment * float64(months)
	if mathutil.WithinTolerance(total, principal, constants.CurrencyTolerance) {
		return 0, true
	}
	if total < principal {
		return 0, false
	}
	if CalculateMonthlyPayment(principal, constants.MaxEstimatedRate, months) < monthlyPayment {
		return 0, false
	}

	low, high := 0.0, constants.MaxEstimatedRate
	rate := (low + high) / 2
	for i := 0; i < constants.MaxRateEstimateIterations; i++ {
		rate = (low + high) / 2
		diff := CalculateMonthlyPayment(principal, rate, months) - monthlyPayment
		if math.Abs(diff) < constants.CurrencyTolerance/10 {
			break
		}
		if diff > 0 {
			high = rate
		} else {
			low = rate
		}
	}
	return mathutil.Round(rate), true
}
