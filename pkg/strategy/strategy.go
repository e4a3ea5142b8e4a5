// Package strategy provides the debt prioritization policies used to direct
// extra payments.
package strategy

import (
	"fmt"
	"sort"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/debts"
)

// Strategy is a named ordering policy over standard debts.
type Strategy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	less func(a, b debts.Base) bool
	rank func(ds []debts.Debt) []debts.Debt
}

// Order returns a priority-ordered copy of ds. The sort is stable, so debts
// the policy considers equal keep their input order.
func (s Strategy) Order(ds []debts.Debt) []debts.Debt {
	if s.rank != nil {
		return s.rank(ds)
	}
	out := make([]debts.Debt, len(ds))
	copy(out, ds)
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return s.less(out[i].Info(), out[j].Info())
		})
	}
	return out
}

// Avalanche targets the highest interest rate first, then the larger balance.
func Avalanche() Strategy {
	return Strategy{
		ID:          constants.StrategyAvalanche,
		Name:        "Avalanche",
		Description: "Pay off debts with the highest interest rate first to minimize total interest.",
		less: func(a, b debts.Base) bool {
			if a.InterestRate != b.InterestRate {
				return a.InterestRate > b.InterestRate
			}
			return a.Balance > b.Balance
		},
	}
}

// Snowball targets the smallest balance first, then the higher rate.
func Snowball() Strategy {
	return Strategy{
		ID:          constants.StrategySnowball,
		Name:        "Snowball",
		Description: "Pay off the smallest balances first to retire debts quickly.",
		less: func(a, b debts.Base) bool {
			if a.Balance != b.Balance {
				return a.Balance < b.Balance
			}
			return a.InterestRate > b.InterestRate
		},
	}
}

// Custom orders debts by the given IDs. Debts missing from order follow the
// listed ones in input order; unknown IDs are ignored.
func Custom(order []string) Strategy {
	position := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := position[id]; !dup {
			position[id] = i
		}
	}
	return Strategy{
		ID:          constants.StrategyCustom,
		Name:        "Custom",
		Description: "Pay off debts in a user-defined order.",
		rank: func(ds []debts.Debt) []debts.Debt {
			out := make([]debts.Debt, len(ds))
			copy(out, ds)
			sort.SliceStable(out, func(i, j int) bool {
				pi, iok := position[out[i].Info().ID]
				pj, jok := position[out[j].Info().ID]
				switch {
				case iok && jok:
					return pi < pj
				case iok:
					return true
				default:
					return false
				}
			})
			return out
		},
	}
}

// All returns the built-in strategies. Custom is listed with an empty order.
func All() []Strategy {
	return []Strategy{Avalanche(), Snowball(), Custom(nil)}
}

// ByID resolves a strategy identifier. An empty id selects the default.
func ByID(id string, customOrder []string) (Strategy, error) {
	switch id {
	case "", constants.StrategyAvalanche:
		return Avalanche(), nil
	case constants.StrategySnowball:
		return Snowball(), nil
	case constants.StrategyCustom:
		return Custom(customOrder), nil
	}
	return Strategy{}, fmt.Errorf("unknown strategy %q, expected avalanche, snowball or custom", id)
}
