package strategy

import (
	"reflect"
	"testing"

	"github.com/iwvelando/debt-planner/pkg/debts"
)

func std(id string, balance, rate float64) debts.Debt {
	return debts.Standard{Base: debts.Base{ID: id, Balance: balance, InterestRate: rate, MinimumPayment: 10}}
}

func ids(ds []debts.Debt) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Info().ID
	}
	return out
}

func TestStrategyOrder(t *testing.T) {
	input := []debts.Debt{
		std("a", 500, 20),
		std("b", 1000, 10),
		std("c", 300, 20),
		std("d", 300, 25),
		std("e", 1000, 10),
	}

	tests := []struct {
		name     string
		strategy Strategy
		expected []string
	}{
		{"Avalanche ties by larger balance then input order", Avalanche(), []string{"d", "a", "c", "b", "e"}},
		{"Snowball ties by higher rate then input order", Snowball(), []string{"d", "c", "a", "b", "e"}},
		{"Custom with partial order", Custom([]string{"e", "zzz", "c"}), []string{"e", "c", "a", "b", "d"}},
		{"Custom with empty order keeps input", Custom(nil), []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.strategy.Order(input))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Order() = %v, expected %v", got, tt.expected)
			}
			// Deterministic and non-mutating.
			if again := ids(tt.strategy.Order(input)); !reflect.DeepEqual(again, got) {
				t.Errorf("Order() not deterministic: %v vs %v", again, got)
			}
			if !reflect.DeepEqual(ids(input), []string{"a", "b", "c", "d", "e"}) {
				t.Errorf("Order() mutated its input: %v", ids(input))
			}
		})
	}
}

func TestByID(t *testing.T) {
	tests := []struct {
		id          string
		expectID    string
		expectError bool
	}{
		{"", "avalanche", false},
		{"avalanche", "avalanche", false},
		{"snowball", "snowball", false},
		{"custom", "custom", false},
		{"random", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := ByID(tt.id, []string{"x"})
			if (err != nil) != tt.expectError {
				t.Fatalf("ByID(%q) error = %v", tt.id, err)
			}
			if s.ID != tt.expectID {
				t.Errorf("ByID(%q).ID = %q, expected %q", tt.id, s.ID, tt.expectID)
			}
		})
	}

	if len(All()) != 3 {
		t.Errorf("All() expected 3 strategies")
	}
}
