// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/simulation"
)

// FindDebt finds a debt plan by debt ID in the results slice.
// Returns a pointer to the debt plan if found, nil otherwise.
func FindDebt(results []planner.DebtPlan, id string) *planner.DebtPlan {
	for i := range results {
		if results[i].Debt.ID == id {
			return &results[i]
		}
	}
	return nil
}

// FindPoint finds the timeline point for a month.
// Returns a pointer to the point if found, nil otherwise.
func FindPoint(points []simulation.DataPoint, date datetime.Month) *simulation.DataPoint {
	for i := range points {
		if points[i].Date == date {
			return &points[i]
		}
	}
	return nil
}

// FindComparison finds a strategy comparison by strategy ID.
func FindComparison(results []planner.StrategyComparison, strategyID string) *planner.StrategyComparison {
	for i := range results {
		if results[i].StrategyID == strategyID {
			return &results[i]
		}
	}
	return nil
}
