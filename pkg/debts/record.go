package debts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/loans"
)

// idNamespace scopes derived debt IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/iwvelando/debt-planner/debts"))

// Record is the flat form a debt takes in config files and API requests.
type Record struct {
	ID               string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string  `json:"name" yaml:"name"`
	Balance          float64 `json:"balance" yaml:"balance"`
	InterestRate     float64 `json:"interestRate" yaml:"interestRate"`
	MinimumPayment   float64 `json:"minimumPayment" yaml:"minimumPayment"`
	InterestIncluded bool    `json:"interestIncluded,omitempty" yaml:"interestIncluded,omitempty"`
	RemainingMonths  int     `json:"remainingMonths,omitempty" yaml:"remainingMonths,omitempty"`
	OriginalRate     float64 `json:"originalRate,omitempty" yaml:"originalRate,omitempty"`
	EstimateRate     bool    `json:"estimateRate,omitempty" yaml:"estimateRate,omitempty"`
	IsGoldLoan       bool    `json:"isGoldLoan,omitempty" yaml:"isGoldLoan,omitempty"`
	LoanTermMonths   int     `json:"loanTermMonths,omitempty" yaml:"loanTermMonths,omitempty"`
	FinalPaymentDate string  `json:"finalPaymentDate,omitempty" yaml:"finalPaymentDate,omitempty"`

	// UsePrincipalAsBalance turns an interest-included debt into a standard
	// one carrying its back-solved principal.
	UsePrincipalAsBalance bool `json:"usePrincipalAsBalance,omitempty" yaml:"usePrincipalAsBalance,omitempty"`
}

// DeriveID returns a stable identifier for a debt without one, built from
// its name and position in the input list.
func DeriveID(name string, position int) string {
	return uuid.NewSHA1(idNamespace, []byte(strconv.Itoa(position)+":"+strings.TrimSpace(name))).String()
}

// Classify validates the record and returns the variant it describes.
func (r Record) Classify() (Debt, error) {
	label := r.label()

	if r.InterestIncluded && r.IsGoldLoan {
		return nil, fmt.Errorf("debt %s: %w", label, ErrConflictingModes)
	}
	if r.Balance < 0 {
		return nil, fmt.Errorf("debt %s: balance cannot be negative: %w", label, ErrInvalidDebt)
	}
	if r.InterestRate < 0 || r.OriginalRate < 0 {
		return nil, fmt.Errorf("debt %s: interest rate cannot be negative: %w", label, ErrInvalidDebt)
	}
	if r.MinimumPayment < 0 {
		return nil, fmt.Errorf("debt %s: minimum payment cannot be negative: %w", label, ErrInvalidDebt)
	}
	if r.RemainingMonths < 0 || r.LoanTermMonths < 0 {
		return nil, fmt.Errorf("debt %s: month counts cannot be negative: %w", label, ErrInvalidDebt)
	}

	base := Base{
		ID:             r.ID,
		Name:           r.Name,
		Balance:        r.Balance,
		InterestRate:   r.InterestRate,
		MinimumPayment: r.MinimumPayment,
	}

	switch {
	case r.IsGoldLoan:
		if r.LoanTermMonths <= 0 {
			return nil, fmt.Errorf("debt %s: loan term months required: %w", label, ErrInvalidGoldLoan)
		}
		if strings.TrimSpace(r.FinalPaymentDate) == "" {
			return nil, fmt.Errorf("debt %s: final payment date required: %w", label, ErrInvalidGoldLoan)
		}
		maturity, err := datetime.Parse(r.FinalPaymentDate)
		if err != nil {
			return nil, fmt.Errorf("debt %s: final payment date: %v: %w", label, err, ErrInvalidGoldLoan)
		}
		return GoldLoan{Base: base, TermMonths: r.LoanTermMonths, Maturity: maturity}, nil

	case r.InterestIncluded:
		original := r.OriginalRate
		if original == 0 {
			original = r.InterestRate
		}
		loan := InterestIncluded{Base: base, RemainingMonths: r.RemainingMonths, OriginalRate: original}
		if r.UsePrincipalAsBalance {
			// Without a solvable term the quoted total is kept.
			if principal, ok := loan.EstimatedPrincipal(); ok {
				base.Balance = principal
				base.InterestRate = original
				return Standard{Base: base}, nil
			}
		}
		return loan, nil
	}

	if r.EstimateRate && r.RemainingMonths > 0 {
		// An unsolvable term keeps the entered rate; validation reports it.
		if rate, ok := loans.EstimateInterestRate(r.Balance, r.MinimumPayment, r.RemainingMonths); ok {
			base.InterestRate = rate
		}
	}
	return Standard{Base: base}, nil
}

// ClassifyAll classifies every record, deriving IDs for records without one.
// IDs must be unique across the list.
func ClassifyAll(records []Record) ([]Debt, error) {
	out := make([]Debt, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			r.ID = DeriveID(r.Name, i)
		}
		if prev, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("debt %d: id %q already used by debt %d: %w", i, r.ID, prev, ErrInvalidDebt)
		}
		seen[r.ID] = i

		d, err := r.Classify()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ToRecord flattens a debt back into its record form.
func ToRecord(d Debt) Record {
	b := d.Info()
	r := Record{
		ID:             b.ID,
		Name:           b.Name,
		Balance:        b.Balance,
		InterestRate:   b.InterestRate,
		MinimumPayment: b.MinimumPayment,
	}
	switch v := d.(type) {
	case GoldLoan:
		r.IsGoldLoan = true
		r.LoanTermMonths = v.TermMonths
		r.FinalPaymentDate = v.Maturity.String()
	case InterestIncluded:
		r.InterestIncluded = true
		r.RemainingMonths = v.RemainingMonths
		r.OriginalRate = v.OriginalRate
	}
	return r
}

func (r Record) label() string {
	if r.Name != "" {
		return strconv.Quote(r.Name)
	}
	if r.ID != "" {
		return r.ID
	}
	return "(unnamed)"
}
