// Package optimizer searches for the smallest monthly payment that retires a
// plan within a target number of months.
package optimizer

import (
	"fmt"
	"math"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/format"
	"github.com/iwvelando/debt-planner/pkg/loans"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
	"github.com/iwvelando/debt-planner/pkg/optimization"
	"github.com/iwvelando/debt-planner/pkg/simulation"
	"go.uber.org/zap"
)

const valueEpsilon = 1e-6

// Runner evaluates candidate budgets against one plan.
type Runner struct {
	logger *zap.Logger
	input  simulation.Input
	conf   config.OptimizerConfig
	symbol string
}

type evaluation struct {
	value  float64
	months int
	status simulation.Status
	target int
}

func (e evaluation) feasible() bool {
	return e.status == simulation.StatusPaidOff && e.months <= e.target
}

// NewRunner constructs a Runner for the provided input and directive.
func NewRunner(logger *zap.Logger, input simulation.Input, conf *config.OptimizerConfig) (*Runner, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	normalized := *conf
	normalized.Normalize()
	return &Runner{logger: logger, input: input, conf: normalized}, nil
}

// WithCurrencySymbol sets the symbol used for display values.
func (r *Runner) WithCurrencySymbol(symbol string) *Runner {
	r.symbol = symbol
	return r
}

// Run bisects the monthly budget between the bounds. Larger budgets never
// slow a plan down, so the smallest feasible budget is well defined.
func (r *Runner) Run() (optimization.Summary, error) {
	minVal, maxVal := r.bounds()

	original, err := r.evaluate(r.input.MonthlyBudget)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Scope:           "plan",
		TargetName:      "all debts",
		Field:           config.OptimizerFieldMonthlyPayment,
		Original:        r.input.MonthlyBudget,
		OriginalDisplay: format.Currency(r.input.MonthlyBudget, r.symbol),
		Floor:           minVal,
		TargetMonths:    r.conf.TargetMonths,
		OriginalMonths:  original.months,
	}

	lower, err := r.evaluate(minVal)
	if err != nil {
		return optimization.Summary{}, err
	}
	if lower.feasible() {
		r.finish(&summary, lower, 0, true,
			fmt.Sprintf("minimum payments of %s already clear every debt within %d months",
				format.Currency(minVal, r.symbol), r.conf.TargetMonths))
		return summary, nil
	}

	upper, err := r.evaluate(maxVal)
	if err != nil {
		return optimization.Summary{}, err
	}
	if !upper.feasible() {
		r.finish(&summary, upper, 0, false,
			fmt.Sprintf("unable to clear every debt within %d months for budgets %s to %s",
				r.conf.TargetMonths, format.Currency(minVal, r.symbol), format.Currency(maxVal, r.symbol)))
		return summary, nil
	}

	iterations := 0
	for upper.value-lower.value > r.conf.Tolerance+valueEpsilon && iterations < r.conf.MaxIterations {
		iterations++
		mid := mathutil.Round((lower.value + upper.value) / 2)
		if mid <= lower.value+valueEpsilon || mid >= upper.value-valueEpsilon {
			break
		}
		eval, err := r.evaluate(mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		if eval.feasible() {
			upper = eval
		} else {
			lower = eval
		}
		r.logger.Debug("optimizer evaluated budget",
			zap.String("op", "optimizer.Run"),
			zap.Float64("budget", mid),
			zap.Int("months", eval.months),
			zap.Bool("feasible", eval.feasible()),
		)
	}

	converged := upper.value-lower.value <= r.conf.Tolerance+valueEpsilon
	var note string
	if !converged {
		note = fmt.Sprintf("stopped after %d iterations within %s of the optimum",
			iterations, format.Currency(upper.value-lower.value, r.symbol))
	}
	r.finish(&summary, upper, iterations, converged, note)

	r.logger.Info("optimizer adjusted monthly payment",
		zap.String("op", "optimizer.Run"),
		zap.Float64("originalNumeric", summary.Original),
		zap.Float64("optimizedNumeric", summary.Value),
		zap.String("optimizedDisplay", summary.ValueDisplay),
		zap.Int("targetMonths", summary.TargetMonths),
		zap.Int("achievedMonths", summary.AchievedMonths),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func (r *Runner) finish(summary *optimization.Summary, eval evaluation, iterations int, converged bool, note string) {
	summary.Value = eval.value
	summary.ValueDisplay = format.Currency(eval.value, r.symbol)
	summary.AchievedMonths = eval.months
	summary.Iterations = iterations
	summary.Converged = converged
	if note != "" {
		summary.Notes = append(summary.Notes, note)
	}
}

// bounds defaults to the total minimum payments and to a budget that clears
// every standard balance in the first month.
func (r *Runner) bounds() (float64, float64) {
	minVal := ceilCents(debts.TotalMinimum(r.input.Debts))
	if r.conf.Min != nil {
		minVal = *r.conf.Min
	}

	maxVal := minVal
	for _, d := range r.input.Debts {
		info := d.Info()
		maxVal += info.Balance + loans.MonthlyInterest(info.Balance, info.InterestRate)
	}
	maxVal = ceilCents(maxVal)
	if r.conf.Max != nil {
		maxVal = *r.conf.Max
	}
	if maxVal < minVal {
		maxVal = minVal
	}
	return minVal, maxVal
}

func (r *Runner) evaluate(budget float64) (evaluation, error) {
	in := r.input
	in.MonthlyBudget = budget
	result, err := simulation.CalculateScenario(in, simulation.ModeAccelerated)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation at %.2f failed: %w", budget, err)
	}
	return evaluation{
		value:  budget,
		months: result.Summary.Months,
		status: result.Summary.Status,
		target: r.conf.TargetMonths,
	}, nil
}

func ceilCents(value float64) float64 {
	return math.Ceil(mathutil.Round(value*100)) / 100
}
