// Package debts defines the debt variants understood by the simulation
// engine and the flat record form they are classified from.
package debts

import (
	"errors"

	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/loans"
)

// Kind names a debt variant.
type Kind string

const (
	KindStandard         Kind = "standard"
	KindGoldLoan         Kind = "gold_loan"
	KindInterestIncluded Kind = "interest_included"
)

var (
	// ErrInvalidDebt marks a record with negative or otherwise unusable fields.
	ErrInvalidDebt = errors.New("invalid debt")
	// ErrInvalidGoldLoan marks a gold loan without a term or maturity date.
	ErrInvalidGoldLoan = errors.New("invalid gold loan")
	// ErrConflictingModes marks a record flagged both interest-included and gold loan.
	ErrConflictingModes = errors.New("debt cannot be both interest-included and a gold loan")
)

// Base holds the fields shared by every variant.
type Base struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	InterestRate   float64 `json:"interestRate"`
	MinimumPayment float64 `json:"minimumPayment"`
}

// Debt is implemented by Standard, GoldLoan and InterestIncluded.
type Debt interface {
	Info() Base
	Kind() Kind
}

// Standard is a compound-interest amortizing debt.
type Standard struct {
	Base
}

func (d Standard) Info() Base { return d.Base }
func (Standard) Kind() Kind   { return KindStandard }

// GoldLoan pays interest only until Maturity, where the full balance is due.
type GoldLoan struct {
	Base
	TermMonths int
	Maturity   datetime.Month
}

func (d GoldLoan) Info() Base { return d.Base }
func (GoldLoan) Kind() Kind   { return KindGoldLoan }

// MonthlyInterest is the interest-only payment due every month before maturity.
func (d GoldLoan) MonthlyInterest() float64 {
	return loans.MonthlyInterest(d.Balance, d.InterestRate)
}

// InterestIncluded is a loan whose quoted balance already contains all future
// interest. It is paid down linearly and accrues nothing.
type InterestIncluded struct {
	Base
	RemainingMonths int
	OriginalRate    float64
}

func (d InterestIncluded) Info() Base { return d.Base }
func (InterestIncluded) Kind() Kind   { return KindInterestIncluded }

// EstimatedPrincipal back-solves the principal hidden inside the quoted
// balance. The boolean is false when the term or payment is unknown.
func (d InterestIncluded) EstimatedPrincipal() (float64, bool) {
	return loans.PrincipalFromTotal(d.Balance, d.OriginalRate, d.MinimumPayment, d.RemainingMonths)
}

// TotalMinimum sums the minimum payments of ds. Gold loans contribute their
// interest-only payment.
func TotalMinimum(ds []Debt) float64 {
	var total float64
	for _, d := range ds {
		if g, ok := d.(GoldLoan); ok {
			total += g.MonthlyInterest()
			continue
		}
		total += d.Info().MinimumPayment
	}
	return total
}
