package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/optimization"
)

func testPlan(t *testing.T, opts planner.Options) *planner.Plan {
	t.Helper()
	conf := &config.Configuration{
		StartDate:      "2025-01",
		MonthlyPayment: 1500,
		CurrencySymbol: "$",
		Debts: []debts.Record{
			{ID: "card", Name: "Credit Card", Balance: 2400, InterestRate: 18, MinimumPayment: 100},
			{ID: "loan", Name: "Family loan", Balance: 1200, MinimumPayment: 100},
		},
		Fundings: []config.Funding{{Name: "Bonus", Amount: 500, Date: "2025-02"}},
	}
	conf.Normalize()
	opts.Now = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	plan, err := planner.Build(nil, conf, opts)
	if err != nil {
		t.Fatalf("planner.Build() error = %v", err)
	}
	return plan
}

func TestPrettyFormat(t *testing.T) {
	plan := testPlan(t, planner.Options{Compare: true, Schedules: true})

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, plan); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()

	for _, expected := range []string{
		"--- Debt payoff plan (Avalanche) ---",
		"Monthly payment: $1,500.00",
		"Total debt: $3,600.00",
		"Total fundings: $500.00",
		"Scenario    | Months | Payoff   | Interest       | Status",
		"Credit Card",
		"18.00%",
		"Time saved:",
		"--- Strategy comparison ---",
		"--- Schedule for Family loan ($100.00 per month) ---",
		"Score:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("PrettyFormat missing %q in output:\n%s", expected, output)
		}
	}
	if strings.Contains(output, "--- Optimization ---") {
		t.Errorf("PrettyFormat should not print an optimization section without a summary")
	}
}

func TestPrettyFormatOptimizationSummary(t *testing.T) {
	plan := testPlan(t, planner.Options{})
	plan.Optimization = &optimization.Summary{
		Field:           "monthlyPayment",
		OriginalDisplay: "$1,500.00",
		ValueDisplay:    "$900.00",
		TargetMonths:    6,
		AchievedMonths:  6,
		Iterations:      12,
		Converged:       true,
		Notes:           []string{"test note"},
	}

	var buf bytes.Buffer
	if err := PrettyFormat(&buf, plan); err != nil {
		t.Fatalf("PrettyFormat() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Optimizer adjusted monthlyPayment from $1,500.00 to $900.00") {
		t.Errorf("PrettyFormat missing optimizer line:\n%s", output)
	}
	if !strings.Contains(output, "note: test note") {
		t.Errorf("PrettyFormat missing optimizer note")
	}
}

func TestCsvFormat(t *testing.T) {
	plan := testPlan(t, planner.Options{})

	var buf bytes.Buffer
	if err := CsvFormat(&buf, plan); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("CsvFormat() produced invalid CSV: %v", err)
	}
	if len(records) != len(plan.Timeline.Points)+1 {
		t.Fatalf("expected %d rows, got %d", len(plan.Timeline.Points)+1, len(records))
	}
	if records[0][0] != "month" || records[0][3] != "accelerated balance" {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][1] != "2025-01" {
		t.Errorf("first row date = %s, expected 2025-01", records[1][1])
	}
	if records[2][6] != "500.00" {
		t.Errorf("second row one-time payment = %s, expected 500.00", records[2][6])
	}
}

func TestCsvStringMatchesCsvFormat(t *testing.T) {
	plan := testPlan(t, planner.Options{})

	var buf bytes.Buffer
	if err := CsvFormat(&buf, plan); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	if CsvString(plan) != buf.String() {
		t.Errorf("CsvString and CsvFormat output mismatch")
	}
}

func TestJSONFormat(t *testing.T) {
	plan := testPlan(t, planner.Options{})

	var buf bytes.Buffer
	if err := JSONFormat(&buf, plan); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}
	if decoded["start"] != "2025-01" {
		t.Errorf("start = %v, expected 2025-01", decoded["start"])
	}
	if decoded["strategy"] != "avalanche" {
		t.Errorf("strategy = %v, expected avalanche", decoded["strategy"])
	}
	if _, ok := decoded["timeline"].(map[string]interface{}); !ok {
		t.Errorf("timeline missing from JSON output")
	}
}

func TestWrite(t *testing.T) {
	plan := testPlan(t, planner.Options{})

	for _, f := range []string{"", "pretty", "csv", "json"} {
		var buf bytes.Buffer
		if err := Write(&buf, f, plan); err != nil {
			t.Errorf("Write(%q) error = %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%q) produced no output", f)
		}
	}

	if err := Write(&bytes.Buffer{}, "xml", plan); err == nil {
		t.Errorf("Write() expected error for unknown format")
	}
}
