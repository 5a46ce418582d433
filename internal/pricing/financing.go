package pricing

import (
	"math"

	"github.com/Simplici0/price-ranger/internal/money"
)

const (
	DefaultAPR        = 6.99
	DefaultTermMonths = 60
)

// FinancingOption describes a loan offer shown next to a price.
type FinancingOption struct {
	Name       string  `json:"name" yaml:"name"`
	APR        float64 `json:"apr" yaml:"apr"`
	TermMonths int     `json:"termLength" yaml:"termLength"`
}

// Payment returns the monthly payment for principal under this offer.
func (f FinancingOption) Payment(principal float64) float64 {
	return MonthlyPayment(principal, f.APR, f.TermMonths)
}

// MonthlyPayment returns the amortized monthly payment rounded to whole
// currency units. Negative or non-finite principal and apr are treated as 0;
// a non-positive term falls back to DefaultTermMonths.
func MonthlyPayment(principal, apr float64, termMonths int) float64 {
	principal = nonNegative(principal)
	apr = nonNegative(apr)
	if termMonths <= 0 {
		termMonths = DefaultTermMonths
	}

	monthlyRate := apr / 100 / 12
	if monthlyRate == 0 {
		return math.Round(principal / float64(termMonths))
	}

	growth := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal * monthlyRate * growth / (growth - 1)
	return math.Round(money.OrZero(payment))
}

// TotalInterest is what the borrower pays above principal over the full term,
// using the rounded monthly payment.
func TotalInterest(principal, apr float64, termMonths int) float64 {
	if termMonths <= 0 {
		termMonths = DefaultTermMonths
	}
	paid := MonthlyPayment(principal, apr, termMonths) * float64(termMonths)
	return math.Max(0, paid-nonNegative(principal))
}

func nonNegative(v float64) float64 {
	if !money.Finite(v) || v < 0 {
		return 0
	}
	return v
}
