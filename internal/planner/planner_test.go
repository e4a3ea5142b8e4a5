package planner

import (
	"math"
	"testing"
	"time"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/score"
	"github.com/iwvelando/debt-planner/pkg/simulation"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

func simpleConfig() *config.Configuration {
	conf := &config.Configuration{
		StartDate:      "2025-01",
		MonthlyPayment: 200,
		Strategy:       constants.StrategyAvalanche,
		Debts: []debts.Record{
			{ID: "loan", Name: "Family loan", Balance: 1200, MinimumPayment: 100},
		},
	}
	conf.Normalize()
	return conf
}

func TestBuildSimplePlan(t *testing.T) {
	plan, err := Build(zap.NewNop(), simpleConfig(), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if plan.Start.String() != "2025-01" {
		t.Errorf("Start = %s, expected 2025-01", plan.Start)
	}
	if plan.TotalBalance != 1200 || plan.TotalMinimum != 100 {
		t.Errorf("unexpected totals: balance %.2f minimum %.2f", plan.TotalBalance, plan.TotalMinimum)
	}
	if plan.Timeline.Baseline.Summary.Months != 12 || plan.Timeline.Accelerated.Summary.Months != 6 {
		t.Errorf("expected 12 baseline and 6 accelerated months, got %d and %d",
			plan.Timeline.Baseline.Summary.Months, plan.Timeline.Accelerated.Summary.Months)
	}
	if plan.Timeline.MonthsSaved != 6 {
		t.Errorf("MonthsSaved = %d, expected 6", plan.Timeline.MonthsSaved)
	}

	if len(plan.Debts) != 1 {
		t.Fatalf("expected 1 debt plan, got %d", len(plan.Debts))
	}
	dp := plan.Debts[0]
	if dp.MonthsSaved != 6 || dp.InterestSaved != 0 {
		t.Errorf("unexpected debt savings: %+v", dp)
	}
	if dp.AtMinimum.Months != 12 || !dp.AtMinimum.Payable() {
		t.Errorf("AtMinimum = %+v, expected 12 paid-off months", dp.AtMinimum)
	}
	if dp.Kind != debts.KindStandard || dp.Debt.ID != "loan" {
		t.Errorf("unexpected debt record %+v of kind %s", dp.Debt, dp.Kind)
	}

	if plan.Split.Principal != 1200 || plan.Split.Interest != 0 || plan.Split.PrincipalShare != 100 {
		t.Errorf("unexpected payment split %+v", plan.Split)
	}

	// 50 interest (nothing to save), 15 duration, 15 behavior
	if plan.Score.TotalScore != 80 || plan.Score.Category != score.CategoryExcellent {
		t.Errorf("unexpected score %+v", plan.Score)
	}

	if plan.Comparison != nil || plan.Schedules != nil || plan.Optimization != nil {
		t.Errorf("optional sections should be empty without options")
	}
	if len(plan.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", plan.Warnings)
	}
}

func TestBuildWithOptions(t *testing.T) {
	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	plan, err := Build(zap.NewNop(), conf, Options{Compare: true, Schedules: true, Optimize: true, TargetMonths: 24, Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !plan.Timeline.Baseline.Summary.Payable() || !plan.Timeline.Accelerated.Summary.Payable() {
		t.Fatalf("expected both scenarios to pay off, got %s and %s",
			plan.Timeline.Baseline.Summary.Status, plan.Timeline.Accelerated.Summary.Status)
	}
	if plan.Timeline.Accelerated.Summary.Months > plan.Timeline.Baseline.Summary.Months {
		t.Errorf("accelerated plan should not be slower than the baseline")
	}
	if plan.Timeline.InterestSaved <= 0 {
		t.Errorf("expected interest savings, got %.2f", plan.Timeline.InterestSaved)
	}
	if plan.CurrencySymbol != "£" {
		t.Errorf("CurrencySymbol = %q, expected £", plan.CurrencySymbol)
	}

	if len(plan.Comparison) != 3 {
		t.Errorf("expected 3 strategy comparisons, got %d", len(plan.Comparison))
	}
	if best, ok := Best(plan.Comparison); !ok {
		t.Errorf("expected a best strategy")
	} else if best.TotalInterest > plan.Timeline.Baseline.Summary.TotalInterest {
		t.Errorf("best strategy should not cost more than the baseline")
	}

	if len(plan.Schedules) != 3 {
		t.Errorf("expected 3 schedules, got %d", len(plan.Schedules))
	}
	for _, s := range plan.Schedules {
		if len(s.Entries) == 0 {
			t.Errorf("schedule for %s is empty", s.DebtID)
		}
	}

	if plan.Optimization == nil {
		t.Fatalf("expected an optimization summary")
	}
	if plan.Optimization.Converged && plan.Optimization.AchievedMonths > 24 {
		t.Errorf("optimized budget misses the target: %+v", plan.Optimization)
	}
	if plan.Optimization.TargetMonths != 24 {
		t.Errorf("TargetMonths = %d, expected 24", plan.Optimization.TargetMonths)
	}

	total := plan.Split.PrincipalShare + plan.Split.InterestShare
	if total < 99.98 || total > 100.02 {
		t.Errorf("payment shares should add up to 100%%, got %.2f", total)
	}
}

func TestBuildReportsFundingTotal(t *testing.T) {
	conf := simpleConfig()
	conf.Fundings = []config.Funding{
		{Name: "Refund", Amount: 150.25, Date: "2025-02"},
		{Name: "Savings", Amount: 50, Date: "2025-03", EndDate: "2025-05", Frequency: 1},
	}

	plan, err := Build(zap.NewNop(), conf, Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.TotalFunding != 300.25 {
		t.Errorf("TotalFunding = %.2f, expected 300.25", plan.TotalFunding)
	}

	plan, err = Build(zap.NewNop(), simpleConfig(), Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.TotalFunding != 0 {
		t.Errorf("TotalFunding = %.2f, expected 0 without fundings", plan.TotalFunding)
	}
}

func TestBuildEstimatedPrincipal(t *testing.T) {
	conf := simpleConfig()
	conf.MonthlyPayment = 700
	conf.Debts = append(conf.Debts, debts.Record{ID: "car", Name: "Car", Balance: 11297.52, InterestRate: 12,
		MinimumPayment: 470.73, InterestIncluded: true, RemainingMonths: 24})

	plan, err := Build(zap.NewNop(), conf, Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(plan.Debts) != 2 {
		t.Fatalf("expected 2 debt plans, got %d", len(plan.Debts))
	}
	if plan.Debts[0].EstimatedPrincipal != nil {
		t.Errorf("standard debt should not carry an estimated principal")
	}
	car := plan.Debts[1]
	if car.Kind != debts.KindInterestIncluded {
		t.Fatalf("Kind = %s, expected %s", car.Kind, debts.KindInterestIncluded)
	}
	if car.EstimatedPrincipal == nil || math.Abs(*car.EstimatedPrincipal-10000) > 1 {
		t.Errorf("EstimatedPrincipal = %v, expected about 10000", car.EstimatedPrincipal)
	}

	conf.Debts[1].UsePrincipalAsBalance = true
	plan, err = Build(zap.NewNop(), conf, Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	car = plan.Debts[1]
	if car.Kind != debts.KindStandard || math.Abs(car.Debt.Balance-10000) > 1 {
		t.Errorf("usePrincipalAsBalance should plan the principal as a standard debt, got %s %.2f", car.Kind, car.Debt.Balance)
	}
	if car.EstimatedPrincipal != nil {
		t.Errorf("converted debt should not carry an estimated principal")
	}
}

func TestBuildInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Configuration)
	}{
		{"Invalid start", func(c *config.Configuration) { c.StartDate = "soon" }},
		{"Unknown strategy", func(c *config.Configuration) { c.Strategy = "fastest" }},
		{"Conflicting debt modes", func(c *config.Configuration) {
			c.Debts[0].InterestIncluded = true
			c.Debts[0].IsGoldLoan = true
		}},
		{"Negative funding", func(c *config.Configuration) {
			c.Fundings = []config.Funding{{Name: "Refund", Amount: -10}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := simpleConfig()
			tt.mutate(conf)
			if _, err := Build(nil, conf, Options{Now: fixedNow}); err == nil {
				t.Errorf("Build() expected error but got none")
			}
		})
	}

	if _, err := BuildInput(nil, fixedNow); err == nil {
		t.Errorf("BuildInput(nil) expected error")
	}
}

func TestBuildOptimizeRequiresTarget(t *testing.T) {
	if _, err := Build(zap.NewNop(), simpleConfig(), Options{Optimize: true, Now: fixedNow}); err == nil {
		t.Errorf("Build() expected error when optimizing without a target")
	}
}

func TestCompareStrategies(t *testing.T) {
	conf := simpleConfig()
	conf.Debts = []debts.Record{
		{ID: "small", Name: "Small", Balance: 300, InterestRate: 5, MinimumPayment: 30},
		{ID: "costly", Name: "Costly", Balance: 3000, InterestRate: 25, MinimumPayment: 90},
	}
	conf.MonthlyPayment = 400

	in, err := BuildInput(conf, fixedNow)
	if err != nil {
		t.Fatalf("BuildInput() error = %v", err)
	}
	comparisons, err := CompareStrategies(in, []string{"small"})
	if err != nil {
		t.Fatalf("CompareStrategies() error = %v", err)
	}

	byID := make(map[string]StrategyComparison)
	for _, c := range comparisons {
		byID[c.StrategyID] = c
	}
	avalanche, snowball := byID[constants.StrategyAvalanche], byID[constants.StrategySnowball]
	if avalanche.TotalInterest > snowball.TotalInterest {
		t.Errorf("avalanche interest %.2f should not exceed snowball %.2f", avalanche.TotalInterest, snowball.TotalInterest)
	}
	if custom := byID[constants.StrategyCustom]; custom.TotalInterest != snowball.TotalInterest {
		t.Errorf("custom order matching snowball should cost the same, got %.2f and %.2f", custom.TotalInterest, snowball.TotalInterest)
	}

	best, ok := Best(comparisons)
	if !ok || best.StrategyID != constants.StrategyAvalanche {
		t.Errorf("expected avalanche to be best, got %+v", best)
	}
}

func TestBestSkipsNonPayable(t *testing.T) {
	comparisons := []StrategyComparison{
		{StrategyID: "a", PayoffDetails: simulation.PayoffDetails{Status: simulation.StatusNonPayable}},
	}
	if _, ok := Best(comparisons); ok {
		t.Errorf("Best() should not pick a non-payable strategy")
	}
}
