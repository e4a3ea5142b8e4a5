// Package simulation runs the month-by-month payoff engine for a set of
// debts under a monthly budget, a strategy and a funding schedule.
//
// Two scenarios are simulated. The baseline pays scheduled minimums only.
// The accelerated scenario directs the rest of the budget, plus any one-time
// fundings, to standard debts in strategy order. Calculations are pure: the
// same Input always produces the same output and inputs are never modified.
package simulation

import (
	"errors"

	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/events"
	"github.com/iwvelando/debt-planner/pkg/strategy"
)

// ErrInvalidInput wraps every input validation failure.
var ErrInvalidInput = errors.New("invalid simulation input")

// Mode selects a scenario.
type Mode string

const (
	ModeBaseline    Mode = "baseline"
	ModeAccelerated Mode = "accelerated"
)

// Status describes how a scenario or debt ended.
type Status string

const (
	StatusPaidOff         Status = "paid_off"
	StatusNonPayable      Status = "non_payable"
	StatusHorizonExceeded Status = "horizon_exceeded"
)

// Input is everything a simulation needs. Start anchors month index 0.
type Input struct {
	Debts         []debts.Debt
	MonthlyBudget float64
	Strategy      strategy.Strategy
	Fundings      []events.Funding
	Start         datetime.Month
	// MaxMonths caps the simulation; zero means MaxSimulationMonths.
	MaxMonths int
}

// PayoffDetails summarizes how long a debt, or a whole scenario, takes to
// pay off. PayoffDate is nil unless Status is StatusPaidOff.
type PayoffDetails struct {
	Months        int             `json:"months"`
	TotalInterest float64         `json:"totalInterest"`
	PayoffDate    *datetime.Month `json:"payoffDate,omitempty"`
	Status        Status          `json:"status"`
}

// Payable reports whether the debt or scenario reached zero.
func (p PayoffDetails) Payable() bool {
	return p.Status == StatusPaidOff
}

// DebtPayoff is the payoff of a single debt within a scenario.
type DebtPayoff struct {
	DebtID string     `json:"debtId"`
	Name   string     `json:"name"`
	Kind   debts.Kind `json:"kind"`
	PayoffDetails
}

// Allocation is what one debt received in one month.
type Allocation struct {
	DebtID          string  `json:"debtId"`
	StartingBalance float64 `json:"startingBalance"`
	Interest        float64 `json:"interest"`
	Minimum         float64 `json:"minimum"`
	Extra           float64 `json:"extra"`
	Balloon         float64 `json:"balloon"`
	EndingBalance   float64 `json:"endingBalance"`
}

// MonthResult is the ledger of one simulated month.
type MonthResult struct {
	Index int            `json:"index"`
	Date  datetime.Month `json:"date"`
	// Funding is the one-time funding received this month.
	Funding float64 `json:"funding"`
	// AvailableExtra is the budget plus funding left after every active
	// debt's scheduled minimum, floored at zero.
	AvailableExtra float64 `json:"availableExtra"`
	// ReleasedPayments is the sum of minimums freed by retired debts so far.
	ReleasedPayments float64 `json:"releasedPayments"`
	// BalloonShortfall is the part of a gold loan balloon the extra pool
	// could not cover. It is paid outside the budget.
	BalloonShortfall   float64      `json:"balloonShortfall,omitempty"`
	Allocations        []Allocation `json:"allocations"`
	TotalBalance       float64      `json:"totalBalance"`
	Interest           float64      `json:"interest"`
	CumulativeInterest float64      `json:"cumulativeInterest"`
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Mode    Mode          `json:"mode"`
	Summary PayoffDetails `json:"summary"`
	Debts   []DebtPayoff  `json:"debts"`
	Months  []MonthResult `json:"months"`
	// BudgetShortfall is how far the budget falls below the starting
	// minimum payments. Minimums are still paid in full.
	BudgetShortfall float64 `json:"budgetShortfall"`
}

// Debt returns the payoff for the debt with the given ID.
func (r ScenarioResult) Debt(id string) (DebtPayoff, bool) {
	for _, d := range r.Debts {
		if d.DebtID == id {
			return d, true
		}
	}
	return DebtPayoff{}, false
}

// DataPoint is one month of the baseline versus accelerated timeline.
// Interest figures are cumulative.
type DataPoint struct {
	Month               int            `json:"month"`
	Date                datetime.Month `json:"date"`
	BaselineBalance     float64        `json:"baselineBalance"`
	AcceleratedBalance  float64        `json:"acceleratedBalance"`
	BaselineInterest    float64        `json:"baselineInterest"`
	AcceleratedInterest float64        `json:"acceleratedInterest"`
	OneTimePayment      float64        `json:"oneTimePayment,omitempty"`
}

// Timeline compares both scenarios month by month.
type Timeline struct {
	Points          []DataPoint    `json:"points"`
	Baseline        ScenarioResult `json:"baseline"`
	Accelerated     ScenarioResult `json:"accelerated"`
	MonthsSaved     int            `json:"monthsSaved"`
	InterestSaved   float64        `json:"interestSaved"`
	BudgetShortfall float64        `json:"budgetShortfall"`
}
