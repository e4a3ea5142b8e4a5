package simulation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/debt-planner/pkg/amortization"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/loans"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// StandardizedPayoff computes the payoff of one debt paid a fixed amount
// every month, independent of any strategy. A non-positive payment uses the
// debt's minimum payment. Zero-interest and interest-included debts use the
// closed form; gold loans run to maturity.
func StandardizedPayoff(d debts.Debt, payment float64, start datetime.Month) (PayoffDetails, error) {
	if d == nil {
		return PayoffDetails{}, fmt.Errorf("debt is nil: %w", ErrInvalidInput)
	}
	info := d.Info()
	if payment <= 0 {
		payment = info.MinimumPayment
	}

	paidOff := func(months int, interest float64) PayoffDetails {
		date := start.Add(months)
		return PayoffDetails{Months: months, TotalInterest: mathutil.Round(interest), PayoffDate: &date, Status: StatusPaidOff}
	}

	_, isGold := d.(debts.GoldLoan)
	_, isIncluded := d.(debts.InterestIncluded)
	if !isGold && (isIncluded || info.InterestRate == 0) {
		months, ok := loans.MonthsToPayoff(info.Balance, 0, payment)
		if !ok {
			return PayoffDetails{Status: StatusNonPayable}, nil
		}
		return paidOff(months, 0), nil
	}

	schedule, err := amortization.Build(d, payment, start)
	totals := schedule.Totals()
	switch {
	case errors.Is(err, amortization.ErrNonPayable):
		return PayoffDetails{Status: StatusNonPayable}, nil
	case errors.Is(err, amortization.ErrHorizonExceeded):
		return PayoffDetails{Months: schedule.Months(), TotalInterest: totals.TotalInterest, Status: StatusHorizonExceeded}, nil
	case err != nil:
		return PayoffDetails{}, err
	}
	return paidOff(schedule.Months(), totals.TotalInterest), nil
}
