package planner

import (
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
	"github.com/iwvelando/debt-planner/pkg/simulation"
	"github.com/iwvelando/debt-planner/pkg/strategy"
)

// StrategyComparison is the accelerated outcome of one strategy against the
// shared baseline.
type StrategyComparison struct {
	StrategyID string `json:"strategy"`
	Name       string `json:"name"`
	simulation.PayoffDetails
	MonthsSaved   int     `json:"monthsSaved"`
	InterestSaved float64 `json:"interestSaved"`
}

// CompareStrategies runs the accelerated scenario once per built-in strategy.
// The custom strategy uses customOrder.
func CompareStrategies(in simulation.Input, customOrder []string) ([]StrategyComparison, error) {
	baseline, err := simulation.CalculateScenario(in, simulation.ModeBaseline)
	if err != nil {
		return nil, err
	}

	var out []StrategyComparison
	for _, s := range strategy.All() {
		if s.ID == constants.StrategyCustom {
			s = strategy.Custom(customOrder)
		}
		run := in
		run.Strategy = s
		result, err := simulation.CalculateScenario(run, simulation.ModeAccelerated)
		if err != nil {
			return nil, err
		}

		c := StrategyComparison{StrategyID: s.ID, Name: s.Name, PayoffDetails: result.Summary}
		if baseline.Summary.Payable() && result.Summary.Payable() {
			c.MonthsSaved = baseline.Summary.Months - result.Summary.Months
			c.InterestSaved = mathutil.Round(baseline.Summary.TotalInterest - result.Summary.TotalInterest)
		}
		out = append(out, c)
	}
	return out, nil
}

// Best returns the comparison with the least interest, preferring fewer
// months on ties. Non-payable strategies are never chosen.
func Best(comparisons []StrategyComparison) (StrategyComparison, bool) {
	var best StrategyComparison
	found := false
	for _, c := range comparisons {
		if !c.Payable() {
			continue
		}
		if !found || c.TotalInterest < best.TotalInterest-constants.CurrencyTolerance/2 ||
			(mathutil.WithinTolerance(c.TotalInterest, best.TotalInterest, constants.CurrencyTolerance/2) && c.Months < best.Months) {
			best = c
			found = true
		}
	}
	return best, found
}
