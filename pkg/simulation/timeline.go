package simulation

import (
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// CalculateTimeline runs the baseline and accelerated scenarios in lockstep
// until both have ended and returns one point per month.
func CalculateTimeline(in Input) (Timeline, error) {
	if err := validate(in); err != nil {
		return Timeline{}, err
	}

	baseline := newRunner(in, ModeBaseline)
	accelerated := newRunner(in, ModeAccelerated)

	var points []DataPoint
	for m := 0; !(baseline.finished && accelerated.finished); m++ {
		b := baseline.step(m)
		a := accelerated.step(m)
		points = append(points, DataPoint{
			Month:               m,
			Date:                a.Date,
			BaselineBalance:     b.TotalBalance,
			AcceleratedBalance:  a.TotalBalance,
			BaselineInterest:    b.CumulativeInterest,
			AcceleratedInterest: a.CumulativeInterest,
			OneTimePayment:      a.Funding,
		})
	}

	t := Timeline{
		Points:          points,
		Baseline:        baseline.result,
		Accelerated:     accelerated.result,
		BudgetShortfall: accelerated.result.BudgetShortfall,
	}
	if t.Baseline.Summary.Payable() && t.Accelerated.Summary.Payable() {
		t.MonthsSaved = t.Baseline.Summary.Months - t.Accelerated.Summary.Months
		t.InterestSaved = mathutil.Round(t.Baseline.Summary.TotalInterest - t.Accelerated.Summary.TotalInterest)
	}
	return t, nil
}
