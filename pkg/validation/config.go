// Package validation provides plan validation utilities. Validators return
// human-readable warnings; hard errors are left to the config and engine.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/loans"
	"github.com/iwvelando/debt-planner/pkg/mathutil"
)

// ValidateBudget warns when the budget does not cover the minimum payments.
func ValidateBudget(budget, totalMinimum float64) string {
	if budget+0.005 < totalMinimum {
		return fmt.Sprintf("Monthly payment %.2f is below the total minimum payments %.2f - minimums will be paid outside the budget",
			budget, totalMinimum)
	}
	return ""
}

// ValidatePayable warns when a debt's minimum payment can never retire it.
func ValidatePayable(record debts.Record) string {
	name := record.Name
	switch {
	case record.IsGoldLoan:
		return ""
	case record.Balance <= 0:
		return ""
	case record.InterestIncluded || record.InterestRate == 0:
		if record.MinimumPayment <= 0 {
			return fmt.Sprintf("Debt '%s' has no minimum payment and will never be paid off by minimums alone", name)
		}
	case !loans.IsPayable(record.Balance, record.InterestRate, record.MinimumPayment):
		return fmt.Sprintf("Debt '%s' minimum payment %.2f does not cover monthly interest %.2f - try at least %.2f",
			name, record.MinimumPayment, loans.MonthlyInterest(record.Balance, record.InterestRate),
			loans.MinimumViablePayment(record.Balance, record.InterestRate))
	}
	return ""
}

// ValidateRateEstimate warns when an APR estimate was requested but the term
// and payment cannot produce one.
func ValidateRateEstimate(record debts.Record) string {
	if !record.EstimateRate || record.InterestIncluded || record.RemainingMonths <= 0 {
		return ""
	}
	if _, ok := loans.EstimateInterestRate(record.Balance, record.MinimumPayment, record.RemainingMonths); !ok {
		return fmt.Sprintf("Debt '%s' interest rate cannot be estimated from %d remaining months - using the entered rate %.2f%%",
			record.Name, record.RemainingMonths, record.InterestRate)
	}
	return ""
}

// ValidateGoldLoanMaturity warns when a gold loan is already due at start.
func ValidateGoldLoanMaturity(name, finalPaymentDate string, start datetime.Month) (string, error) {
	maturity, err := datetime.Parse(finalPaymentDate)
	if err != nil {
		return "", err
	}
	if maturity.Before(start) {
		return fmt.Sprintf("Gold loan '%s' matured before the plan start (%s < %s) - the balloon is due immediately",
			name, maturity, start), nil
	}
	return "", nil
}

// ValidateFundingDates warns about fundings that fall before the plan start.
func ValidateFundingDates(name, date, endDate string, start datetime.Month) []string {
	var warnings []string

	if strings.TrimSpace(date) != "" {
		if m, err := datetime.Parse(date); err == nil && m.Before(start) {
			warnings = append(warnings, fmt.Sprintf("Funding '%s' starts before the plan start (%s < %s)", name, m, start))
		}
	}
	if strings.TrimSpace(endDate) != "" {
		if m, err := datetime.Parse(endDate); err == nil && m.Before(start) {
			warnings = append(warnings, fmt.Sprintf("Funding '%s' ends before the plan start (%s < %s) - it will never apply", name, m, start))
		}
	}

	return warnings
}

// ValidateCustomOrder warns about custom-order IDs that match no debt.
func ValidateCustomOrder(order []string, ids []string) []string {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	var warnings []string
	for _, id := range order {
		if !known[id] {
			warnings = append(warnings, fmt.Sprintf("Custom order entry '%s' does not match any debt and is ignored", id))
		}
	}
	return warnings
}

// FundingConfig is the part of a funding the validator inspects.
type FundingConfig struct {
	Name    string
	Date    string
	EndDate string
}

// PlanValidator validates a whole plan and collects warnings.
type PlanValidator struct {
	Start         datetime.Month
	MonthlyBudget float64
	Strategy      string
	CustomOrder   []string
	Debts         []debts.Record
	Fundings      []FundingConfig
}

// ValidateAll validates the entire plan and returns warnings
func (pv *PlanValidator) ValidateAll() []string {
	var warnings []string

	var minimums []float64
	ids := make([]string, 0, len(pv.Debts))
	for i, record := range pv.Debts {
		id := record.ID
		if strings.TrimSpace(id) == "" {
			id = debts.DeriveID(record.Name, i)
		}
		ids = append(ids, id)

		if record.IsGoldLoan {
			minimums = append(minimums, loans.MonthlyInterest(record.Balance, record.InterestRate))
			if record.FinalPaymentDate != "" {
				warning, err := ValidateGoldLoanMaturity(record.Name, record.FinalPaymentDate, pv.Start)
				if err == nil && warning != "" {
					warnings = append(warnings, warning)
				}
			}
			continue
		}
		minimums = append(minimums, record.MinimumPayment)

		if warning := ValidatePayable(record); warning != "" {
			warnings = append(warnings, warning)
		}
		if warning := ValidateRateEstimate(record); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if warning := ValidateBudget(pv.MonthlyBudget, mathutil.Sum(minimums...)); warning != "" {
		warnings = append(warnings, warning)
	}

	for _, funding := range pv.Fundings {
		warnings = append(warnings, ValidateFundingDates(funding.Name, funding.Date, funding.EndDate, pv.Start)...)
	}

	if pv.Strategy == constants.StrategyCustom {
		warnings = append(warnings, ValidateCustomOrder(pv.CustomOrder, ids)...)
	}

	return warnings
}
