package simulation

import (
	"fmt"
	"math"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/events"
	"github.com/iwvelando/debt-planner/pkg/loans"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
	"github.com/iwvelando/debt-planner/pkg/strategy"
)

// debtState is the running balance of one debt in one scenario.
type debtState struct {
	debt     debts.Debt
	balance  float64
	interest float64
	// paidAt is the number of months simulated when the debt retired, or -1.
	paidAt int
}

func (s *debtState) active() bool {
	return s.paidAt < 0
}

// scheduledMinimum is what the debt is expected to consume from the budget
// this month. Gold loans are interest only.
func (s *debtState) scheduledMinimum() float64 {
	info := s.debt.Info()
	if _, ok := s.debt.(debts.GoldLoan); ok {
		return loans.MonthlyInterest(s.balance, info.InterestRate)
	}
	return info.MinimumPayment
}

// runner steps one scenario. After it finishes it keeps stepping on request
// so a timeline can run both scenarios in lockstep, but its result is frozen.
type runner struct {
	mode      Mode
	budget    float64
	fundings  events.Schedule
	start     datetime.Month
	maxMonths int

	states   []*debtState // input order
	standard []*debtState // strategy order
	gold     []*debtState
	included []*debtState

	cumulativeInterest float64
	released           float64

	finished bool
	result   ScenarioResult
}

func newRunner(in Input, mode Mode) *runner {
	r := &runner{
		mode:      mode,
		budget:    in.MonthlyBudget,
		start:     in.Start,
		maxMonths: in.MaxMonths,
		result:    ScenarioResult{Mode: mode},
	}
	if r.maxMonths <= 0 || r.maxMonths > constants.MaxSimulationMonths {
		r.maxMonths = constants.MaxSimulationMonths
	}
	if mode == ModeAccelerated {
		r.fundings = events.NewSchedule(in.Fundings)
	}

	byID := make(map[string]*debtState, len(in.Debts))
	var standard []debts.Debt
	var activeDebts []debts.Debt
	for _, d := range in.Debts {
		s := &debtState{debt: d, balance: mathutil.Round(d.Info().Balance), paidAt: -1}
		if loans.IsPaidOff(s.balance) {
			s.balance = 0
			s.paidAt = 0
		} else {
			activeDebts = append(activeDebts, d)
		}
		r.states = append(r.states, s)
		byID[d.Info().ID] = s

		switch d.(type) {
		case debts.GoldLoan:
			r.gold = append(r.gold, s)
		case debts.InterestIncluded:
			r.included = append(r.included, s)
		default:
			standard = append(standard, d)
		}
	}

	// The priority order is fixed from the starting balances.
	strat := in.Strategy
	if strat.ID == "" {
		strat = strategy.Avalanche()
	}
	for _, d := range strat.Order(standard) {
		r.standard = append(r.standard, byID[d.Info().ID])
	}

	r.result.BudgetShortfall = mathutil.Max(0, mathutil.Round(debts.TotalMinimum(activeDebts)-r.budget))

	if len(activeDebts) == 0 {
		r.finish(StatusPaidOff, 0)
	}
	return r
}

func (r *runner) accelerated() bool {
	return r.mode == ModeAccelerated
}

// step simulates month index m.
func (r *runner) step(m int) MonthResult {
	date := r.start.Add(m)
	month := MonthResult{Index: m, Date: date}

	allocations := make(map[*debtState]*Allocation, len(r.states))
	var scheduled float64
	for _, s := range r.states {
		if !s.active() {
			continue
		}
		scheduled += s.scheduledMinimum()
		allocations[s] = &Allocation{DebtID: s.debt.Info().ID, StartingBalance: s.balance}
	}

	var extra float64
	if r.accelerated() {
		month.Funding = r.fundings.Amount(date)
		month.AvailableExtra = mathutil.Max(0, mathutil.Round(r.budget+month.Funding-scheduled))
		extra = month.AvailableExtra
	}

	var monthInterest []float64
	goldPending := false

	for _, s := range r.gold {
		if !s.active() {
			continue
		}
		loan := s.debt.(debts.GoldLoan)
		a := allocations[s]
		interest := loans.MonthlyInterest(s.balance, loan.InterestRate)
		a.Interest = interest
		a.Minimum = interest
		s.interest = mathutil.Round(s.interest + interest)
		monthInterest = append(monthInterest, interest)

		if date.Before(loan.Maturity) {
			goldPending = true
			continue
		}
		a.Balloon = s.balance
		if r.accelerated() {
			fromPool := mathutil.Min(extra, s.balance)
			extra = mathutil.Round(extra - fromPool)
			month.BalloonShortfall = mathutil.Round(month.BalloonShortfall + s.balance - fromPool)
		}
		s.balance = 0
	}

	for _, s := range r.included {
		if !s.active() {
			continue
		}
		a := allocations[s]
		minimum := s.debt.Info().MinimumPayment
		pay := mathutil.Min(minimum, s.balance)
		a.Minimum = pay
		s.balance = mathutil.Max(0, mathutil.Round(s.balance-pay))
		if r.accelerated() {
			extra = mathutil.Round(extra + minimum - pay)
		}
	}

	for _, s := range r.standard {
		if !s.active() {
			continue
		}
		a := allocations[s]
		info := s.debt.Info()
		interest := loans.MonthlyInterest(s.balance, info.InterestRate)
		pay := mathutil.Min(info.MinimumPayment, mathutil.Round(s.balance+interest))
		a.Interest = interest
		a.Minimum = pay
		s.interest = mathutil.Round(s.interest + interest)
		monthInterest = append(monthInterest, interest)
		s.balance = loans.ApplyPayment(s.balance, pay, interest)
		if r.accelerated() {
			extra = mathutil.Round(extra + info.MinimumPayment - pay)
		}
	}

	if r.accelerated() {
		for _, s := range r.standard {
			if extra <= 0 {
				break
			}
			if !s.active() || loans.IsPaidOff(s.balance) {
				continue
			}
			pay := mathutil.Min(extra, s.balance)
			s.balance = mathutil.Round(s.balance - pay)
			extra = mathutil.Round(extra - pay)
			allocations[s].Extra = pay
		}
	}

	decreased := false
	var growth float64
	balances := make([]float64, 0, len(r.states))
	for _, s := range r.states {
		a, ok := allocations[s]
		if !ok {
			continue
		}
		if loans.IsPaidOff(s.balance) {
			s.balance = 0
			s.paidAt = m + 1
			r.released = mathutil.Round(r.released + scheduledAtRetirement(s, a))
		}
		a.EndingBalance = s.balance
		if a.EndingBalance < a.StartingBalance {
			decreased = true
		}
		growth += a.EndingBalance - a.StartingBalance
		month.Allocations = append(month.Allocations, *a)
		balances = append(balances, s.balance)
	}

	month.Interest = mathutil.Sum(monthInterest...)
	r.cumulativeInterest = mathutil.Round(r.cumulativeInterest + month.Interest)
	month.CumulativeInterest = r.cumulativeInterest
	month.TotalBalance = mathutil.Sum(balances...)
	month.ReleasedPayments = r.released

	if r.finished {
		return month
	}
	r.result.Months = append(r.result.Months, month)

	switch {
	case r.allPaid():
		r.finish(StatusPaidOff, m+1)
	case !decreased && !goldPending && !r.rescuable(date, growth):
		r.finish(StatusNonPayable, m+1)
	case m+1 >= r.maxMonths:
		r.finish(StatusHorizonExceeded, m+1)
	}
	return month
}

// rescuable reports whether a later funding could still outrun this month's
// balance growth. Fundings only reach the accelerated scenario.
func (r *runner) rescuable(date datetime.Month, growth float64) bool {
	if !r.accelerated() {
		return false
	}
	return r.fundings.LargestAfter(date) > mathutil.Max(0, mathutil.Round(growth))
}

// scheduledAtRetirement is the monthly amount a retired debt stops consuming.
func scheduledAtRetirement(s *debtState, a *Allocation) float64 {
	if _, ok := s.debt.(debts.GoldLoan); ok {
		return a.Minimum
	}
	return s.debt.Info().MinimumPayment
}

func (r *runner) allPaid() bool {
	for _, s := range r.states {
		if s.active() {
			return false
		}
	}
	return true
}

// finish freezes the scenario result after months simulated months.
func (r *runner) finish(status Status, months int) {
	r.finished = true
	r.result.Summary = r.details(status, months, r.cumulativeInterest)

	r.result.Debts = make([]DebtPayoff, 0, len(r.states))
	for _, s := range r.states {
		info := s.debt.Info()
		var details PayoffDetails
		if s.active() {
			details = r.details(status, months, s.interest)
		} else {
			details = r.details(StatusPaidOff, s.paidAt, s.interest)
		}
		r.result.Debts = append(r.result.Debts, DebtPayoff{
			DebtID:        info.ID,
			Name:          info.Name,
			Kind:          s.debt.Kind(),
			PayoffDetails: details,
		})
	}
}

func (r *runner) details(status Status, months int, interest float64) PayoffDetails {
	d := PayoffDetails{Months: months, TotalInterest: mathutil.Round(interest), Status: status}
	if status == StatusPaidOff {
		date := r.start.Add(months)
		d.PayoffDate = &date
	}
	return d
}

func (r *runner) run() ScenarioResult {
	for m := 0; !r.finished; m++ {
		r.step(m)
	}
	return r.result
}

// CalculateScenario simulates a single scenario until every debt is paid,
// the plan stalls or the month cap is reached.
func CalculateScenario(in Input, mode Mode) (ScenarioResult, error) {
	if mode != ModeBaseline && mode != ModeAccelerated {
		return ScenarioResult{}, fmt.Errorf("unknown scenario mode %q: %w", mode, ErrInvalidInput)
	}
	if err := validate(in); err != nil {
		return ScenarioResult{}, err
	}
	return newRunner(in, mode).run(), nil
}

// CalculatePayoffDetails returns the accelerated payoff of every debt keyed
// by debt ID.
func CalculatePayoffDetails(in Input) (map[string]PayoffDetails, error) {
	result, err := CalculateScenario(in, ModeAccelerated)
	if err != nil {
		return nil, err
	}
	out := make(map[string]PayoffDetails, len(result.Debts))
	for _, d := range result.Debts {
		out[d.DebtID] = d.PayoffDetails
	}
	return out, nil
}

func validate(in Input) error {
	if math.IsNaN(in.MonthlyBudget) || math.IsInf(in.MonthlyBudget, 0) || in.MonthlyBudget < 0 {
		return fmt.Errorf("monthly budget %v must be a non-negative amount: %w", in.MonthlyBudget, ErrInvalidInput)
	}
	if in.MaxMonths < 0 {
		return fmt.Errorf("max months cannot be negative: %w", ErrInvalidInput)
	}

	seen := make(map[string]bool, len(in.Debts))
	for i, d := range in.Debts {
		if d == nil {
			return fmt.Errorf("debt %d is nil: %w", i, ErrInvalidInput)
		}
		info := d.Info()
		if info.ID == "" {
			return fmt.Errorf("debt %d has no id: %w", i, ErrInvalidInput)
		}
		if seen[info.ID] {
			return fmt.Errorf("duplicate debt id %q: %w", info.ID, ErrInvalidInput)
		}
		seen[info.ID] = true
		if info.Balance < 0 || info.InterestRate < 0 || info.MinimumPayment < 0 {
			return fmt.Errorf("debt %q has negative fields: %w", info.ID, ErrInvalidInput)
		}
	}

	for i, f := range in.Fundings {
		if f.Amount < 0 || math.IsNaN(f.Amount) {
			return fmt.Errorf("funding %d amount %v cannot be negative: %w", i, f.Amount, ErrInvalidInput)
		}
	}
	return nil
}
