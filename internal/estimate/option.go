// Package estimate models opportunities and their priced options, and groups
// options into packages for display.
package estimate

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// PriceRange stands in for a single price when the price is still uncertain.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Option is one priced package candidate within an opportunity.
type Option struct {
	ID               string             `json:"id"`
	Name             string             `json:"name,omitempty"`
	Price            float64            `json:"price"`
	PriceRange       *PriceRange        `json:"priceRange,omitempty"`
	FinalPrice       *float64           `json:"finalPrice,omitempty"`
	Promotion        *pricing.Promotion `json:"promotion,omitempty"`
	IsApproved       bool               `json:"isApproved"`
	ShowAsLowAsPrice bool               `json:"showAsLowAsPrice"`
	Details          *pricing.Details   `json:"calculatedPriceDetails,omitempty"`
}

// NewOption returns a blank option with a fresh ID.
func NewOption(name string) Option {
	return Option{ID: uuid.NewString(), Name: name}
}

// promotion returns the promotion that applies to o: its own first, then the
// opportunity-level fallback.
func (o Option) promotion(fallback *pricing.Promotion) *pricing.Promotion {
	if o.Promotion != nil {
		return o.Promotion
	}
	return fallback
}

// EffectivePrice is the amount o contributes to a package total.
func (o Option) EffectivePrice(fallback *pricing.Promotion) float64 {
	lo, _ := o.Bounds(fallback)
	return lo
}

// Bounds returns the low and high amount o can contribute. They differ only
// for options priced by a range.
func (o Option) Bounds(fallback *pricing.Promotion) (float64, float64) {
	if o.FinalPrice != nil {
		p := nonNegative(*o.FinalPrice)
		return p, p
	}

	lo, hi := nonNegative(o.Price), nonNegative(o.Price)
	if lo == 0 && o.PriceRange != nil {
		lo, hi = nonNegative(o.PriceRange.Min), nonNegative(o.PriceRange.Max)
		if hi < lo {
			lo, hi = hi, lo
		}
	}

	if promo := o.promotion(fallback); promo != nil {
		lo, hi = promo.Apply(lo), promo.Apply(hi)
	}
	return lo, hi
}

// Reprice recomputes the derived figures of o after its price, cost details
// or the active promotion changed. A calculated breakdown with a price is the
// source of the base price; its total price is kept as authored. A final price
// that arrives without an applicable promotion is kept as well.
func (o Option) Reprice(fallback *pricing.Promotion) Option {
	if o.Details != nil {
		d := *o.Details
		d.TotalTax = d.TaxRates.TaxAmount(d.Costs)
		o.Details = &d
		if d.TotalPrice > 0 {
			o.Price = d.TotalPrice
		}
	}

	if promo := o.promotion(fallback); promo != nil && !promo.Discount.IsZero() && o.Price > 0 {
		final := promo.Apply(o.Price)
		o.FinalPrice = &final
	} else if o.FinalPrice != nil {
		final := nonNegative(*o.FinalPrice)
		o.FinalPrice = &final
	}
	return o
}

func nonNegative(v float64) float64 {
	v = money.OrZero(v)
	if v < 0 {
		return 0
	}
	return v
}

// OperatorType is the relation between two adjacent options.
type OperatorType string

const (
	OperatorAnd OperatorType = "and"
	OperatorOr  OperatorType = "or"
)

// Operator links Options[i] and Options[i+1].
type Operator struct {
	Type OperatorType `json:"type"`
}

// And and Or are the two operators.
var (
	And = Operator{Type: OperatorAnd}
	Or  = Operator{Type: OperatorOr}
)

// IsOr reports whether op separates two alternative packages. Anything that
// is not "or" bundles.
func (op Operator) IsOr() bool {
	return strings.EqualFold(strings.TrimSpace(string(op.Type)), string(OperatorOr))
}
