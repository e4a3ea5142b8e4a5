// Package score rates a payoff plan against the minimum-payments baseline.
package score

import (
	"math"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
	"github.com/iwvelando/debt-planner/pkg/simulation"
)

// Maximum points per component.
const (
	MaxInterestScore = 50.0
	MaxDurationScore = 30.0
	MaxBehaviorPart  = 5.0
	fundingPoints    = 1.25
	customPoints     = 2.5
)

// Category thresholds.
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 60.0
	FairThreshold      = 40.0
)

// Behavior describes the habits the plan reflects.
type Behavior struct {
	MonthlyBudget float64
	TotalMinimum  float64
	StrategyID    string
	FundingCount  int
}

// BehaviorScore breaks down the up to 20 behavior points.
type BehaviorScore struct {
	OnTimePayments  float64 `json:"onTimePayments"`
	ExcessPayments  float64 `json:"excessPayments"`
	StrategyUsage   float64 `json:"strategyUsage"`
	OneTimeFundings float64 `json:"oneTimeFundings"`
}

// Total sums the behavior components.
func (b BehaviorScore) Total() float64 {
	return mathutil.Sum(b.OnTimePayments, b.ExcessPayments, b.StrategyUsage, b.OneTimeFundings)
}

// Details is a scored plan.
type Details struct {
	InterestScore   float64       `json:"interestScore"`
	DurationScore   float64       `json:"durationScore"`
	Behavior        BehaviorScore `json:"behaviorScore"`
	TotalScore      float64       `json:"totalScore"`
	Category        Category      `json:"category"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

// Calculate scores an optimized plan against the original one.
func Calculate(original, optimized simulation.PayoffDetails, behavior Behavior) Details {
	var d Details

	switch {
	case !optimized.Payable():
		// Nothing earned for a plan that never finishes.
	case !original.Payable():
		d.InterestScore = MaxInterestScore
		d.DurationScore = MaxDurationScore
	default:
		d.InterestScore = MaxInterestScore
		if original.TotalInterest > 0 {
			d.InterestScore = mathutil.Round(MaxInterestScore * ratio(original.TotalInterest-optimized.TotalInterest, original.TotalInterest))
		}
		d.DurationScore = MaxDurationScore
		if original.Months > 0 {
			d.DurationScore = mathutil.Round(MaxDurationScore * ratio(float64(original.Months-optimized.Months), float64(original.Months)))
		}
	}

	d.Behavior = behaviorScore(behavior)
	d.TotalScore = mathutil.Sum(d.InterestScore, d.DurationScore, d.Behavior.Total())
	d.Category = CategoryFor(d.TotalScore)
	d.Recommendations = recommendations(d)
	return d
}

func behaviorScore(b Behavior) BehaviorScore {
	var s BehaviorScore
	if b.MonthlyBudget+constants.CurrencyTolerance >= b.TotalMinimum {
		s.OnTimePayments = MaxBehaviorPart
	}

	excess := b.MonthlyBudget - b.TotalMinimum
	switch {
	case excess <= 0:
	case b.TotalMinimum <= 0:
		s.ExcessPayments = MaxBehaviorPart
	default:
		s.ExcessPayments = mathutil.Round(MaxBehaviorPart * math.Min(1, excess/b.TotalMinimum))
	}

	switch b.StrategyID {
	case constants.StrategyAvalanche, constants.StrategySnowball:
		s.StrategyUsage = MaxBehaviorPart
	case constants.StrategyCustom:
		s.StrategyUsage = customPoints
	}

	if b.FundingCount > 0 {
		s.OneTimeFundings = math.Min(MaxBehaviorPart, fundingPoints*float64(b.FundingCount))
	}
	return s
}

func recommendations(d Details) []string {
	var out []string
	if d.InterestScore < MaxInterestScore/2 {
		out = append(out, "Direct extra payments at the highest-rate debts to cut interest.")
	}
	if d.DurationScore < MaxDurationScore/2 {
		out = append(out, "Increase the monthly budget to shorten the payoff timeline.")
	}
	if d.Behavior.ExcessPayments < MaxBehaviorPart/2 {
		out = append(out, "Pay more than the minimum each month.")
	}
	if d.Behavior.OneTimeFundings == 0 {
		out = append(out, "Put windfalls such as bonuses or refunds toward debt as one-time fundings.")
	}
	return out
}

// ratio returns part/whole clamped to [0, 1].
func ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, part/whole))
}
