package loans

import (
	"math"
	"testing"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name               string
		principal          float64
		annualInterestRate float64
		termMonths         int
		expectedRange      []float64 // [min, max] expected range
	}{
		{
			name:               "Standard 30-year mortgage",
			principal:          240000,
			annualInterestRate: 6.0,
			termMonths:         360,
			expectedRange:      []float64{1400, 1500}, // Around $1439
		},
		{
			name:               "5-year car loan",
			principal:          20000,
			annualInterestRate: 4.0,
			termMonths:         60,
			expectedRange:      []float64{360, 380}, // Around $368
		},
		{
			name:               "Zero interest loan",
			principal:          10000,
			annualInterestRate: 0.0,
			termMonths:         60,
			expectedRange:      []float64{166, 167}, // Exactly $166.67
		},
		{
			name:               "High interest loan",
			principal:          10000,
			annualInterestRate: 18.0,
			termMonths:         36,
			expectedRange:      []float64{360, 380}, // Around $362
		},
		{
			name:               "No term",
			principal:          10000,
			annualInterestRate: 5.0,
			termMonths:         0,
			expectedRange:      []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyPayment(tt.principal, tt.annualInterestRate, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestMonthlyInterest(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		annualRate float64
		expected   float64
	}{
		{"Credit card at 24%", 1000, 24.0, 20.0},
		{"Rounded to cents", 500, 20.0, 8.33},
		{"Car loan interest", 15000, 4.5, 56.25},
		{"Zero interest short-circuit", 10000, 0.0, 0.0},
		{"Zero balance", 0, 19.9, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthlyInterest(tt.balance, tt.annualRate)
			if result != tt.expected {
				t.Errorf("MonthlyInterest(%v, %v) = %v, expected %v", tt.balance, tt.annualRate, result, tt.expected)
			}
		})
	}
}

func TestPrincipalFromTotal(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		rate      float64
		payment   float64
		months    int
		expected  float64
		tolerance float64
		expectOK  bool
	}{
		{"Two year loan at 12%", 11297.52, 12.0, 470.73, 24, 10000, 1.0, true},
		{"Zero interest equals total", 12000, 0, 500, 24, 12000, 0.001, true},
		{"Capped at quoted total", 5000, 0, 500, 24, 5000, 0.001, true},
		{"Zero months", 12000, 12.0, 500, 0, 0, 0, false},
		{"Zero payment", 12000, 12.0, 0, 24, 0, 0, false},
		{"Zero total", 0, 12.0, 500, 24, 0, 0, false},
		{"Negative rate", 12000, -1.0, 500, 24, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := PrincipalFromTotal(tt.total, tt.rate, tt.payment, tt.months)
			if ok != tt.expectOK {
				t.Fatalf("PrincipalFromTotal() ok = %v, expected %v", ok, tt.expectOK)
			}
			if !ok {
				return
			}
			if result > tt.total {
				t.Errorf("PrincipalFromTotal() = %.2f exceeds total %.2f", result, tt.total)
			}
			if math.Abs(result-tt.expected) > tt.tolerance {
				t.Errorf("PrincipalFromTotal() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestMonthsToPayoff(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		rate     float64
		payment  float64
		expected int
		expectOK bool
	}{
		{"Zero interest closed form", 1200, 0, 100, 12, true},
		{"Zero interest partial final month", 1000, 0, 300, 4, true},
		{"Payment equals interest", 1000, 24, 20, 0, false},
		{"Payment below interest", 1000, 24, 10, 0, false},
		{"Amortizing", 1000, 12, 100, 11, true},
		{"Already paid off", 0.005, 12, 100, 0, true},
		{"No payment", 1000, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, ok := MonthsToPayoff(tt.balance, tt.rate, tt.payment)
			if ok != tt.expectOK {
				t.Fatalf("MonthsToPayoff() ok = %v, expected %v", ok, tt.expectOK)
			}
			if months != tt.expected {
				t.Errorf("MonthsToPayoff() = %d, expected %d", months, tt.expected)
			}
		})
	}
}

func TestEstimateInterestRate(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		payment  float64
		months   int
		expected float64
		expectOK bool
	}{
		{"Recovers 12% loan", 10000, 470.73, 24, 12.0, true},
		{"Recovers 18% loan", 10000, 361.52, 36, 18.0, true},
		{"Payments equal principal", 12000, 500, 24, 0, true},
		{"Payments below principal", 12000, 400, 24, 0, false},
		{"Invalid months", 12000, 500, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := EstimateInterestRate(tt.balance, tt.payment, tt.months)
			if ok != tt.expectOK {
				t.Fatalf("EstimateInterestRate() ok = %v, expected %v", ok, tt.expectOK)
			}
			if math.Abs(rate-tt.expected) > 0.05 {
				t.Errorf("EstimateInterestRate() = %.2f, expected %.2f", rate, tt.expected)
			}
		})
	}
}

func TestApplyPayment(t *testing.T) {
	tests := []struct {
		name     string
		balance  float64
		payment  float64
		interest float64
		expected float64
	}{
		{"Payment equal to interest", 1000, 20, 20, 1000},
		{"Normal amortization", 500, 50, 8.33, 458.33},
		{"Overpayment floors at zero", 100, 150, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ApplyPayment(tt.balance, tt.payment, tt.interest); result != tt.expected {
				t.Errorf("ApplyPayment() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestPayability(t *testing.T) {
	if !IsPaidOff(0.01) || IsPaidOff(0.02) {
		t.Errorf("IsPaidOff threshold should be 0.01")
	}
	if IsPayable(1000, 24, 20) {
		t.Errorf("payment equal to interest should not be payable")
	}
	if !IsPayable(1000, 24, 21) {
		t.Errorf("payment above interest should be payable")
	}
	if got := MinimumViablePayment(1000, 24); got != 21 {
		t.Errorf("MinimumViablePayment(1000, 24) = %v, expected 21", got)
	}
	if got := MinimumViablePayment(500, 20); got != 10 {
		t.Errorf("MinimumViablePayment(500, 20) = %v, expected 10", got)
	}
}

func TestMonthlyPaymentCalculationAgainstReference(t *testing.T) {
	// $175,000 at 4.5% over 360 months
	monthlyPayment := CalculateMonthlyPayment(175000, 4.5, 360)
	expectedPayment := 886.70
	tolerance := 0.01

	if math.Abs(monthlyPayment-expectedPayment) > tolerance {
		t.Errorf("CalculateMonthlyPayment() = %.2f, expected %.2f (diff: %.2f)",
			monthlyPayment, expectedPayment, math.Abs(monthlyPayment-expectedPayment))
	}
}
