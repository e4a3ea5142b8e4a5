// Package output provides utilities for formatting and displaying payoff plans.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/format"
	"github.com/iwvelando/debt-planner/pkg/simulation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders the plan in the named format.
func Write(w io.Writer, outputFormat string, plan *planner.Plan) error {
	switch outputFormat {
	case "", constants.OutputFormatPretty:
		return PrettyFormat(w, plan)
	case constants.OutputFormatCSV:
		return CsvFormat(w, plan)
	case constants.OutputFormatJSON:
		return JSONFormat(w, plan)
	}
	return fmt.Errorf("unknown output format: %s", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, plan *planner.Plan) error {
	p := message.NewPrinter(language.English)
	sym := plan.CurrencySymbol
	tl := plan.Timeline
	ew := &errWriter{w: w}

	ew.printf("--- Debt payoff plan (%s) ---\n", plan.StrategyName)
	ew.printf("Start: %s | Monthly payment: %s | Total debt: %s | Minimum payments: %s\n",
		plan.Start.Label(),
		amount(p, sym, plan.MonthlyBudget),
		amount(p, sym, plan.TotalBalance),
		amount(p, sym, plan.TotalMinimum))
	if plan.TotalFunding > 0 {
		ew.printf("Total fundings: %s\n", amount(p, sym, plan.TotalFunding))
	}
	if tl.BudgetShortfall > 0 {
		ew.printf("Warning: the monthly payment is %s short of the minimum payments\n", amount(p, sym, tl.BudgetShortfall))
	}
	ew.printf("\n")

	ew.printf("Scenario    | Months | Payoff   | Interest       | Status\n")
	ew.printf("________    | ______ | ______   | ________       | ______\n")
	for _, row := range []struct {
		label   string
		details simulation.PayoffDetails
	}{
		{"Minimums   ", tl.Baseline.Summary},
		{"Accelerated", tl.Accelerated.Summary},
	} {
		ew.printf("%s | %6d | %-8s | %-14s | %s\n", row.label, row.details.Months, payoffDate(row.details),
			amount(p, sym, row.details.TotalInterest), row.details.Status)
	}
	if tl.Baseline.Summary.Payable() && tl.Accelerated.Summary.Payable() {
		ew.printf("Time saved: %s | Interest saved: %s\n", format.Months(tl.MonthsSaved), amount(p, sym, tl.InterestSaved))
	}
	ew.printf("\n")

	ew.printf("Debt                 | Balance        | Rate    | Minimum      | Payoff   | Interest\n")
	ew.printf("____                 | _______        | ____    | _______      | ______   | ________\n")
	for _, d := range plan.Debts {
		ew.printf("%-20s | %-14s | %-7s | %-12s | %-8s | %s\n",
			truncate(d.Debt.Name, 20),
			amount(p, sym, d.Debt.Balance),
			format.Percent(d.Debt.InterestRate),
			amount(p, sym, d.Debt.MinimumPayment),
			payoffDate(d.Accelerated),
			amount(p, sym, d.Accelerated.TotalInterest))
	}
	ew.printf("\n")

	ew.printf("Paid: %s (principal %s, interest %s)\n",
		amount(p, sym, plan.Split.TotalPaid), format.Percent(plan.Split.PrincipalShare), format.Percent(plan.Split.InterestShare))
	ew.printf("Score: %.1f/100 %s - %s\n", plan.Score.TotalScore, plan.Score.Category.Label, plan.Score.Category.Description)
	for _, r := range plan.Score.Recommendations {
		ew.printf("  * %s\n", r)
	}

	if len(plan.Comparison) > 0 {
		ew.printf("\n--- Strategy comparison ---\n")
		for _, c := range plan.Comparison {
			ew.printf("%-10s | %6d months | %-14s | %s\n", c.Name, c.Months, amount(p, sym, c.TotalInterest), c.Status)
		}
	}

	if opt := plan.Optimization; opt != nil {
		ew.printf("\n--- Optimization ---\n")
		ew.printf("Optimizer adjusted %s from %s to %s (target %d months, achieved %d, iterations %d, converged %t)\n",
			opt.Field, opt.OriginalDisplay, opt.ValueDisplay, opt.TargetMonths, opt.AchievedMonths, opt.Iterations, opt.Converged)
		for _, note := range opt.Notes {
			ew.printf("  note: %s\n", note)
		}
	}

	for _, s := range plan.Schedules {
		totals := s.Totals()
		ew.printf("\n--- Schedule for %s (%s per month) ---\n", s.DebtName, amount(p, sym, s.MonthlyPayment))
		ew.printf("Period | Date     | Payment      | Principal    | Interest     | Balance\n")
		for _, e := range s.Entries {
			ew.printf("%6d | %-8s | %-12s | %-12s | %-12s | %s\n", e.Period, e.Date.Label(),
				amount(p, sym, e.Payment), amount(p, sym, e.Principal), amount(p, sym, e.Interest), amount(p, sym, e.EndingBalance))
		}
		ew.printf("Total paid %s, interest %s\n", amount(p, sym, totals.TotalPaid), amount(p, sym, totals.TotalInterest))
	}

	return ew.err
}

// CsvString returns the timeline CSV as a string.
func CsvString(plan *planner.Plan) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, plan); err != nil {
		return ""
	}
	return buf.String()
}

// CsvFormat outputs the month-by-month timeline in comma-separated value format.
func CsvFormat(w io.Writer, plan *planner.Plan) error {
	cw := csv.NewWriter(w)
	header := []string{"month", "date", "baseline balance", "accelerated balance",
		"baseline interest", "accelerated interest", "one-time payment"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, point := range plan.Timeline.Points {
		record := []string{
			fmt.Sprintf("%d", point.Month),
			point.Date.String(),
			fmt.Sprintf("%.2f", point.BaselineBalance),
			fmt.Sprintf("%.2f", point.AcceleratedBalance),
			fmt.Sprintf("%.2f", point.BaselineInterest),
			fmt.Sprintf("%.2f", point.AcceleratedInterest),
			fmt.Sprintf("%.2f", point.OneTimePayment),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the whole plan as indented JSON.
func JSONFormat(w io.Writer, plan *planner.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func amount(p *message.Printer, symbol string, value float64) string {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	if value < 0 {
		return p.Sprintf("-%s%.2f", symbol, -value)
	}
	return p.Sprintf("%s%.2f", symbol, value)
}

func payoffDate(d simulation.PayoffDetails) string {
	if d.PayoffDate == nil {
		return "never"
	}
	return d.PayoffDate.Label()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-1]) + "~"
}

// errWriter keeps the first write error so report code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(layout string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, layout, args...)
}
