// Package planner turns a loaded configuration into a complete payoff plan:
// the baseline versus accelerated timeline, per-debt payoffs, schedules,
// a score and optional strategy comparison and budget optimization.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/internal/optimizer"
	"github.com/iwvelando/debt-planner/pkg/amortization"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/events"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
	"github.com/iwvelando/debt-planner/pkg/optimization"
	"github.com/iwvelando/debt-planner/pkg/score"
	"github.com/iwvelando/debt-planner/pkg/simulation"
	"go.uber.org/zap"
)

// Options selects the optional parts of a plan.
type Options struct {
	Compare   bool
	Schedules bool
	Optimize  bool
	// TargetMonths overrides the configured optimizer target when positive.
	TargetMonths int
	// Now anchors plans without a start date. Zero means time.Now.
	Now time.Time
}

// DebtPlan is the outcome for one debt.
type DebtPlan struct {
	Debt          debts.Record             `json:"debt"`
	Kind          debts.Kind               `json:"kind"`
	Baseline      simulation.PayoffDetails `json:"baseline"`
	Accelerated   simulation.PayoffDetails `json:"accelerated"`
	MonthsSaved   int                      `json:"monthsSaved"`
	InterestSaved float64                  `json:"interestSaved"`
	// AtMinimum is the payoff of the debt on its own at its minimum payment.
	AtMinimum simulation.PayoffDetails `json:"atMinimum"`
	// EstimatedPrincipal is set for interest-included debts with a solvable term.
	EstimatedPrincipal *float64 `json:"estimatedPrincipal,omitempty"`
}

// PaymentSplit divides the accelerated plan's payments into principal and
// interest.
type PaymentSplit struct {
	TotalPaid      float64 `json:"totalPaid"`
	Principal      float64 `json:"principal"`
	Interest       float64 `json:"interest"`
	PrincipalShare float64 `json:"principalShare"`
	InterestShare  float64 `json:"interestShare"`
}

// Plan is everything computed for one configuration.
type Plan struct {
	Start          datetime.Month          `json:"start"`
	CurrencySymbol string                  `json:"currencySymbol"`
	StrategyID     string                  `json:"strategy"`
	StrategyName   string                  `json:"strategyName"`
	MonthlyBudget  float64                 `json:"monthlyBudget"`
	TotalBalance   float64                 `json:"totalBalance"`
	TotalMinimum   float64                 `json:"totalMinimum"`
	TotalFunding   float64                 `json:"totalFunding"`
	Timeline       simulation.Timeline     `json:"timeline"`
	Debts          []DebtPlan              `json:"debts"`
	Split          PaymentSplit            `json:"paymentSplit"`
	Score          score.Details           `json:"score"`
	Comparison     []StrategyComparison    `json:"comparison,omitempty"`
	Schedules      []amortization.Schedule `json:"schedules,omitempty"`
	Optimization   *optimization.Summary   `json:"optimization,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
}

// BuildInput converts a configuration into engine input.
func BuildInput(conf *config.Configuration, now time.Time) (simulation.Input, error) {
	if conf == nil {
		return simulation.Input{}, fmt.Errorf("configuration cannot be nil")
	}

	start, err := conf.StartMonthWithFixedTime(now)
	if err != nil {
		return simulation.Input{}, err
	}
	list, err := conf.DebtList()
	if err != nil {
		return simulation.Input{}, err
	}
	fundings, err := conf.FundingList(start, conf.Horizon(start))
	if err != nil {
		return simulation.Input{}, err
	}
	s, err := conf.StrategyValue()
	if err != nil {
		return simulation.Input{}, err
	}

	return simulation.Input{
		Debts:         list,
		MonthlyBudget: conf.MonthlyPayment,
		Strategy:      s,
		Fundings:      fundings,
		Start:         start,
		MaxMonths:     conf.MaxMonths,
	}, nil
}

// Build computes the plan for a configuration.
func Build(logger *zap.Logger, conf *config.Configuration, opts Options) (*Plan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	in, err := BuildInput(conf, now)
	if err != nil {
		return nil, err
	}

	timeline, err := simulation.CalculateTimeline(in)
	if err != nil {
		return nil, fmt.Errorf("failed to compute timeline: %w", err)
	}

	plan := &Plan{
		Start:          in.Start,
		CurrencySymbol: conf.CurrencySymbol,
		StrategyID:     in.Strategy.ID,
		StrategyName:   in.Strategy.Name,
		MonthlyBudget:  in.MonthlyBudget,
		TotalMinimum:   debts.TotalMinimum(in.Debts),
		TotalFunding:   events.NewSchedule(in.Fundings).Total(),
		Timeline:       timeline,
		Warnings:       conf.ValidateConfigurationWithFixedTime(now),
	}

	balances := make([]float64, 0, len(in.Debts))
	for _, d := range in.Debts {
		balances = append(balances, d.Info().Balance)
	}
	plan.TotalBalance = mathutil.Sum(balances...)

	plan.Debts, err = debtPlans(in, timeline)
	if err != nil {
		return nil, err
	}
	plan.Split = paymentSplit(plan.TotalBalance, timeline.Accelerated)
	plan.Score = score.Calculate(timeline.Baseline.Summary, timeline.Accelerated.Summary, score.Behavior{
		MonthlyBudget: in.MonthlyBudget,
		TotalMinimum:  plan.TotalMinimum,
		StrategyID:    in.Strategy.ID,
		FundingCount:  len(in.Fundings),
	})

	if opts.Compare {
		plan.Comparison, err = CompareStrategies(in, conf.CustomOrder)
		if err != nil {
			return nil, err
		}
	}

	if opts.Schedules {
		plan.Schedules, err = schedules(logger, in)
		if err != nil {
			return nil, err
		}
	}

	if opts.Optimize {
		summary, err := optimize(logger, in, conf, opts.TargetMonths)
		if err != nil {
			return nil, err
		}
		plan.Optimization = &summary
	}

	logger.Info("plan computed",
		zap.String("op", "planner.Build"),
		zap.String("strategy", plan.StrategyID),
		zap.Int("debts", len(plan.Debts)),
		zap.Float64("totalFunding", plan.TotalFunding),
		zap.Int("months", len(timeline.Points)),
		zap.String("baselineStatus", string(timeline.Baseline.Summary.Status)),
		zap.String("acceleratedStatus", string(timeline.Accelerated.Summary.Status)),
		zap.Int("monthsSaved", timeline.MonthsSaved),
		zap.Float64("interestSaved", timeline.InterestSaved),
	)
	return plan, nil
}

func debtPlans(in simulation.Input, timeline simulation.Timeline) ([]DebtPlan, error) {
	plans := make([]DebtPlan, 0, len(in.Debts))
	for _, d := range in.Debts {
		info := d.Info()
		baseline, _ := timeline.Baseline.Debt(info.ID)
		accelerated, _ := timeline.Accelerated.Debt(info.ID)

		atMinimum, err := simulation.StandardizedPayoff(d, info.MinimumPayment, in.Start)
		if err != nil {
			return nil, fmt.Errorf("debt %s: %w", info.ID, err)
		}

		dp := DebtPlan{
			Debt:        debts.ToRecord(d),
			Kind:        d.Kind(),
			Baseline:    baseline.PayoffDetails,
			Accelerated: accelerated.PayoffDetails,
			AtMinimum:   atMinimum,
		}
		if loan, ok := d.(debts.InterestIncluded); ok {
			if principal, ok := loan.EstimatedPrincipal(); ok {
				dp.EstimatedPrincipal = &principal
			}
		}
		if dp.Baseline.Payable() && dp.Accelerated.Payable() {
			dp.MonthsSaved = dp.Baseline.Months - dp.Accelerated.Months
			dp.InterestSaved = mathutil.Round(dp.Baseline.TotalInterest - dp.Accelerated.TotalInterest)
		}
		plans = append(plans, dp)
	}
	return plans, nil
}

func paymentSplit(totalBalance float64, result simulation.ScenarioResult) PaymentSplit {
	remaining := 0.0
	if n := len(result.Months); n > 0 {
		remaining = result.Months[n-1].TotalBalance
	}
	principal := mathutil.Round(totalBalance - remaining)
	interest := result.Summary.TotalInterest
	total := mathutil.Round(principal + interest)

	return PaymentSplit{
		TotalPaid:      total,
		Principal:      principal,
		Interest:       interest,
		PrincipalShare: mathutil.Round(mathutil.CalculatePercentage(principal, total)),
		InterestShare:  mathutil.Round(mathutil.CalculatePercentage(interest, total)),
	}
}

// schedules builds an amortization schedule per debt at its minimum payment.
// Debts the minimum can never retire are logged and skipped.
func schedules(logger *zap.Logger, in simulation.Input) ([]amortization.Schedule, error) {
	out := make([]amortization.Schedule, 0, len(in.Debts))
	for _, d := range in.Debts {
		schedule, err := amortization.Build(d, 0, in.Start)
		switch {
		case errors.Is(err, amortization.ErrNonPayable):
			logger.Warn("skipping schedule for debt that minimum payments never retire",
				zap.String("op", "planner.schedules"),
				zap.String("debt", d.Info().ID),
			)
			continue
		case errors.Is(err, amortization.ErrHorizonExceeded):
			logger.Warn("schedule truncated at the month cap",
				zap.String("op", "planner.schedules"),
				zap.String("debt", d.Info().ID),
				zap.Int("rows", len(schedule.Entries)),
			)
		case err != nil:
			return nil, fmt.Errorf("debt %s schedule: %w", d.Info().ID, err)
		}
		out = append(out, schedule)
	}
	return out, nil
}

func optimize(logger *zap.Logger, in simulation.Input, conf *config.Configuration, targetMonths int) (optimization.Summary, error) {
	directive := config.OptimizerConfig{}
	if conf.Optimizer != nil {
		directive = *conf.Optimizer
	}
	if targetMonths > 0 {
		directive.TargetMonths = targetMonths
	}

	runner, err := optimizer.NewRunner(logger, in, &directive)
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("failed to initialize optimizer: %w", err)
	}
	summary, err := runner.WithCurrencySymbol(conf.CurrencySymbol).Run()
	if err != nil {
		return optimization.Summary{}, fmt.Errorf("optimizer execution failed: %w", err)
	}
	return summary, nil
}
