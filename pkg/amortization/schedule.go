// Package amortization builds per-debt month-by-month payment ledgers.
package amortization

import (
	"errors"
	"fmt"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/loans"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

var (
	// ErrNonPayable is returned when the payment never reduces the balance.
	ErrNonPayable = errors.New("payment does not cover monthly interest")
	// ErrHorizonExceeded is returned with a partial schedule when payoff takes
	// longer than MaxSimulationMonths.
	ErrHorizonExceeded = errors.New("payoff exceeds calculable horizon")
)

// Entry is one month of a schedule.
type Entry struct {
	Period          int            `json:"period"`
	Date            datetime.Month `json:"date"`
	StartingBalance float64        `json:"startingBalance"`
	Payment         float64        `json:"payment"`
	Principal       float64        `json:"principal"`
	Interest        float64        `json:"interest"`
	EndingBalance   float64        `json:"endingBalance"`
}

// Schedule is the full ledger for one debt.
type Schedule struct {
	DebtID         string  `json:"debtId"`
	DebtName       string  `json:"debtName"`
	Kind           string  `json:"kind"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	Entries        []Entry `json:"entries"`
}

// Totals summarizes a schedule.
type Totals struct {
	TotalPaid          float64 `json:"totalPaid"`
	TotalInterest      float64 `json:"totalInterest"`
	PrincipalReduction float64 `json:"principalReduction"`
	// InterestShare is the interest percentage of everything paid.
	InterestShare float64 `json:"interestShare"`
}

// Totals adds up the payments in the schedule.
func (s Schedule) Totals() Totals {
	var paid, interest, principal []float64
	for _, e := range s.Entries {
		paid = append(paid, e.Payment)
		interest = append(interest, e.Interest)
		principal = append(principal, e.Principal)
	}
	t := Totals{
		TotalPaid:          mathutil.Sum(paid...),
		TotalInterest:      mathutil.Sum(interest...),
		PrincipalReduction: mathutil.Sum(principal...),
	}
	t.InterestShare = mathutil.Round(mathutil.CalculatePercentage(t.TotalInterest, t.TotalPaid))
	return t
}

// Months returns the number of rows.
func (s Schedule) Months() int {
	return len(s.Entries)
}

// Build produces the payment ledger for d starting in month start. A
// non-positive payment uses the debt's minimum payment. Gold loans ignore the
// payment and follow their interest-only schedule.
func Build(d debts.Debt, monthlyPayment float64, start datetime.Month) (Schedule, error) {
	if d == nil {
		return Schedule{}, fmt.Errorf("amortization: nil debt")
	}
	info := d.Info()
	if monthlyPayment <= 0 {
		monthlyPayment = info.MinimumPayment
	}
	schedule := Schedule{
		DebtID:         info.ID,
		DebtName:       info.Name,
		Kind:           string(d.Kind()),
		MonthlyPayment: monthlyPayment,
	}

	switch v := d.(type) {
	case debts.GoldLoan:
		return buildGoldLoan(schedule, v, start)
	case debts.InterestIncluded:
		return buildLinear(schedule, v.Base, monthlyPayment, start)
	default:
		return buildAmortizing(schedule, info, monthlyPayment, start)
	}
}

func buildAmortizing(schedule Schedule, debt debts.Base, payment float64, start datetime.Month) (Schedule, error) {
	balance := mathutil.Round(debt.Balance)
	if loans.IsPaidOff(balance) {
		return schedule, nil
	}
	if !loans.IsPayable(balance, debt.InterestRate, payment) {
		return schedule, fmt.Errorf("debt %s: %w", debt.ID, ErrNonPayable)
	}

	for period := 1; !loans.IsPaidOff(balance); period++ {
		if period > constants.MaxSimulationMonths {
			return schedule, fmt.Errorf("debt %s: %w", debt.ID, ErrHorizonExceeded)
		}
		interest := loans.MonthlyInterest(balance, debt.InterestRate)
		pay := mathutil.Min(payment, mathutil.Round(balance+interest))
		ending := loans.ApplyPayment(balance, pay, interest)
		if loans.IsPaidOff(ending) {
			ending = 0
		}
		schedule.Entries = append(schedule.Entries, Entry{
			Period:          period,
			Date:            start.Add(period - 1),
			StartingBalance: balance,
			Payment:         pay,
			Principal:       mathutil.Round(pay - interest),
			Interest:        interest,
			EndingBalance:   ending,
		})
		balance = ending
	}
	return schedule, nil
}

func buildLinear(schedule Schedule, debt debts.Base, payment float64, start datetime.Month) (Schedule, error) {
	balance := mathutil.Round(debt.Balance)
	if loans.IsPaidOff(balance) {
		return schedule, nil
	}
	if payment <= 0 {
		return schedule, fmt.Errorf("debt %s: %w", debt.ID, ErrNonPayable)
	}

	for period := 1; !loans.IsPaidOff(balance); period++ {
		if period > constants.MaxSimulationMonths {
			return schedule, fmt.Errorf("debt %s: %w", debt.ID, ErrHorizonExceeded)
		}
		pay := mathutil.Min(payment, balance)
		ending := mathutil.Max(0, mathutil.Round(balance-pay))
		if loans.IsPaidOff(ending) {
			ending = 0
		}
		schedule.Entries = append(schedule.Entries, Entry{
			Period:          period,
			Date:            start.Add(period - 1),
			StartingBalance: balance,
			Payment:         pay,
			Principal:       pay,
			EndingBalance:   ending,
		})
		balance = ending
	}
	return schedule, nil
}

func buildGoldLoan(schedule Schedule, loan debts.GoldLoan, start datetime.Month) (Schedule, error) {
	balance := mathutil.Round(loan.Balance)
	if loans.IsPaidOff(balance) {
		return schedule, nil
	}
	interest := loan.MonthlyInterest()
	schedule.MonthlyPayment = interest

	for period := 1; ; period++ {
		if period > constants.MaxSimulationMonths {
			return schedule, fmt.Errorf("debt %s: %w", loan.ID, ErrHorizonExceeded)
		}
		date := start.Add(period - 1)
		entry := Entry{
			Period:          period,
			Date:            date,
			StartingBalance: balance,
			Payment:         interest,
			Interest:        interest,
			EndingBalance:   balance,
		}
		// Balloon at or after maturity.
		if !date.Before(loan.Maturity) {
			entry.Payment = mathutil.Round(balance + interest)
			entry.Principal = balance
			entry.EndingBalance = 0
			schedule.Entries = append(schedule.Entries, entry)
			return schedule, nil
		}
		schedule.Entries = append(schedule.Entries, entry)
	}
}
