package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/price-ranger/internal/money"
)

// MinMarginPercent is the minimum acceptable profit margin.
const MinMarginPercent = 30.0

// Costs holds the raw dollar costs of an estimate.
type Costs struct {
	Material float64 `json:"materialCost"`
	Labor    float64 `json:"laborCost"`
	Other    float64 `json:"otherCost"`
}

// Total returns the sum of all cost categories.
func (c Costs) Total() float64 {
	return money.OrZero(money.Sum(c.Material, c.Labor, c.Other))
}

// TaxRates holds per-category tax percentages.
type TaxRates struct {
	Material float64 `json:"materialTax"`
	Labor    float64 `json:"laborTax"`
	Other    float64 `json:"otherTax"`
}

// TaxAmount returns the dollar tax owed on costs.
func (t TaxRates) TaxAmount(c Costs) float64 {
	return money.OrZero(money.Sum(
		money.OrZero(c.Material*t.Material/100),
		money.OrZero(c.Labor*t.Labor/100),
		money.OrZero(c.Other*t.Other/100),
	))
}

// Quote is the result of a forward price derivation.
type Quote struct {
	TotalCost  float64 `json:"totalCost"`
	TotalTax   float64 `json:"totalTax"`
	TotalPrice float64 `json:"totalPrice"`
}

// ComputePriceForward derives the total price from costs, taxes and a target
// profit margin: totalCost * (1 + margin/100) + tax.
func ComputePriceForward(costs Costs, taxes TaxRates, marginPct float64) Quote {
	totalCost := costs.Total()
	totalTax := taxes.TaxAmount(costs)
	markup := decimal.NewFromFloat(100 + money.OrZero(marginPct)).Div(decimal.NewFromInt(100))
	withMargin, _ := decimal.NewFromFloat(totalCost).Mul(markup).Float64()

	return Quote{
		TotalCost:  totalCost,
		TotalTax:   totalTax,
		TotalPrice: money.OrZero(money.Sum(money.OrZero(withMargin), totalTax)),
	}
}

// ComputeMarginReverse derives the whole-percent profit margin implied by a
// user-entered price. A zero or non-finite price yields 0.
func ComputeMarginReverse(costs Costs, taxes TaxRates, totalPrice float64) float64 {
	if totalPrice == 0 || !money.Finite(totalPrice) {
		return 0
	}
	margin := (totalPrice - costs.Total() - taxes.TaxAmount(costs)) / totalPrice * 100
	return math.Round(money.OrZero(margin))
}

// Details is the persisted decomposition of an option price.
type Details struct {
	Costs
	TaxRates
	TotalTax     float64 `json:"totalTax"`
	ProfitMargin float64 `json:"profitMargin"`
	TotalPrice   float64 `json:"totalPrice"`
}

// Field names the input a user last edited.
type Field string

const (
	FieldMaterialCost Field = "materialCost"
	FieldLaborCost    Field = "laborCost"
	FieldOtherCost    Field = "otherCost"
	FieldMaterialTax  Field = "materialTax"
	FieldLaborTax     Field = "laborTax"
	FieldOtherTax     Field = "otherTax"
	FieldMargin       Field = "profitMargin"
	FieldPrice        Field = "totalPrice"
)

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	switch f {
	case FieldMaterialCost, FieldLaborCost, FieldOtherCost,
		FieldMaterialTax, FieldLaborTax, FieldOtherTax,
		FieldMargin, FieldPrice:
		return true
	}
	return false
}

// Edit is the outcome of applying one field edit to Details.
type Edit struct {
	Details       Details `json:"details"`
	MarginWarning bool    `json:"marginWarning"`
}

// Edit applies value to field and recomputes the dependent figures. Editing
// the price derives the margin; editing anything else derives the price.
// The receiver is not modified. Unknown fields leave the details unchanged
// apart from refreshing derived figures in the forward direction.
func (d Details) Edit(field Field, value float64, minMargin float64) Edit {
	value = money.OrZero(value)

	switch field {
	case FieldMaterialCost:
		d.Costs.Material = value
	case FieldLaborCost:
		d.Costs.Labor = value
	case FieldOtherCost:
		d.Costs.Other = value
	case FieldMaterialTax:
		d.TaxRates.Material = value
	case FieldLaborTax:
		d.TaxRates.Labor = value
	case FieldOtherTax:
		d.TaxRates.Other = value
	case FieldMargin:
		d.ProfitMargin = value
	case FieldPrice:
		d.TotalPrice = value
	}

	d.TotalTax = d.TaxRates.TaxAmount(d.Costs)
	if field == FieldPrice {
		d.ProfitMargin = ComputeMarginReverse(d.Costs, d.TaxRates, d.TotalPrice)
	} else {
		d.TotalPrice = ComputePriceForward(d.Costs, d.TaxRates, d.ProfitMargin).TotalPrice
	}

	return Edit{
		Details:       d,
		MarginWarning: d.ProfitMargin < minMargin,
	}
}
