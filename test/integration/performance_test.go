package integration

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	plan, err := planner.Build(logger, conf, planner.Options{Compare: true, Schedules: true, Now: fixedNow})
	if err != nil {
		t.Fatalf("planner.Build failed: %v", err)
	}
	buildTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Config load time: %v", loadTime)
	t.Logf("  Plan build time: %v", buildTime)
	t.Logf("  Timeline months: %d", len(plan.Timeline.Points))

	if loadTime > time.Second {
		t.Errorf("Config loading took too long: %v", loadTime)
	}
	if buildTime > 5*time.Second {
		t.Errorf("Plan build took too long: %v", buildTime)
	}
}

// TestDataConsistency checks repeated plans are identical.
func TestDataConsistency(t *testing.T) {
	first := buildTestPlan(t, planner.Options{Compare: true})
	second := buildTestPlan(t, planner.Options{Compare: true})

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first plan: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second plan: %v", err)
	}
	if string(a) != string(b) {
		t.Error("Expected identical plans for identical input")
	}
}

// TestConfigurationVariations tests different configurations
func TestConfigurationVariations(t *testing.T) {
	testCases := []struct {
		name     string
		modifier func(*config.Configuration)
		check    func(*testing.T, *planner.Plan)
	}{
		{
			name: "Budget at minimums",
			modifier: func(c *config.Configuration) {
				c.MonthlyPayment = 365
				c.Fundings = nil
			},
			check: func(t *testing.T, p *planner.Plan) {
				if p.Timeline.Accelerated.Summary.Months > p.Timeline.Baseline.Summary.Months {
					t.Errorf("Accelerated should never take longer than baseline")
				}
				if p.Timeline.BudgetShortfall != 0 {
					t.Errorf("Expected no budget shortfall, got %.2f", p.Timeline.BudgetShortfall)
				}
			},
		},
		{
			name: "Budget below minimums",
			modifier: func(c *config.Configuration) {
				c.MonthlyPayment = 300
			},
			check: func(t *testing.T, p *planner.Plan) {
				if p.Timeline.BudgetShortfall != 65 {
					t.Errorf("Expected budget shortfall 65, got %.2f", p.Timeline.BudgetShortfall)
				}
				if len(p.Warnings) == 0 {
					t.Error("Expected a budget warning")
				}
			},
		},
		{
			name: "Snowball strategy",
			modifier: func(c *config.Configuration) {
				c.Strategy = constants.StrategySnowball
			},
			check: func(t *testing.T, p *planner.Plan) {
				if p.StrategyID != constants.StrategySnowball {
					t.Errorf("Expected snowball, got %s", p.StrategyID)
				}
				if !p.Timeline.Accelerated.Summary.Payable() {
					t.Errorf("Expected snowball plan to pay off")
				}
			},
		},
		{
			name: "Added gold loan",
			modifier: func(c *config.Configuration) {
				c.Debts = append(c.Debts, debts.Record{
					Name:             "Gold loan",
					Balance:          2000,
					InterestRate:     12,
					IsGoldLoan:       true,
					LoanTermMonths:   12,
					FinalPaymentDate: "2025-12-01",
				})
			},
			check: func(t *testing.T, p *planner.Plan) {
				if len(p.Debts) != 4 {
					t.Fatalf("Expected 4 debts, got %d", len(p.Debts))
				}
				if !p.Timeline.Baseline.Summary.Payable() {
					t.Errorf("Expected baseline to pay off the gold loan balloon, got %s", p.Timeline.Baseline.Summary.Status)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf, err := config.LoadConfiguration("../test_config.yaml")
			if err != nil {
				t.Fatalf("LoadConfiguration failed: %v", err)
			}
			tc.modifier(conf)

			plan, err := planner.Build(zap.NewNop(), conf, planner.Options{Now: fixedNow})
			if err != nil {
				t.Fatalf("planner.Build failed: %v", err)
			}
			tc.check(t, plan)
		})
	}
}
