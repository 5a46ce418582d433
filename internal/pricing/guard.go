package pricing

import (
	"math"

	"github.com/Simplici0/price-ranger/internal/money"
)

// FloorPrice is the lowest price that still keeps minMargin given costs and
// taxes. A margin of 100% or more has no finite floor and yields 0.
func FloorPrice(costs Costs, taxes TaxRates, minMargin float64) float64 {
	keep := 1 - money.OrZero(minMargin)/100
	if keep <= 0 {
		return 0
	}
	return money.Round((costs.Total()+taxes.TaxAmount(costs))/keep, 2)
}

// Verdict is the guard's answer for one proposed promotion.
type Verdict struct {
	Allowed          bool     `json:"allowed"`
	FloorPrice       float64  `json:"floorPrice"`
	DiscountedPrice  float64  `json:"discountedPrice"`
	NewMarginPercent float64  `json:"newMarginPercent"`
	MaxDiscount      Discount `json:"maxDiscount"`
	MinMarginPercent float64  `json:"minMarginPercent"`
}

// CheckPromotion decides whether d can be applied to currentPrice without
// pushing the margin below minMargin. A rejected verdict carries the floor
// price and the largest discount of the same kind that would be accepted.
func CheckPromotion(currentPrice float64, d Discount, costs Costs, taxes TaxRates, minMargin float64) Verdict {
	currentPrice = money.OrZero(currentPrice)
	floor := FloorPrice(costs, taxes, minMargin)
	discounted := ApplyDiscount(currentPrice, d)

	v := Verdict{
		FloorPrice:       floor,
		DiscountedPrice:  discounted,
		MinMarginPercent: minMargin,
		MaxDiscount:      maxDiscount(currentPrice, floor, d.Kind),
	}

	if discounted > 0 {
		margin := (discounted - costs.Total() - taxes.TaxAmount(costs)) / discounted * 100
		v.NewMarginPercent = money.Round(margin, 2)
		v.Allowed = margin >= minMargin
	}
	return v
}

// IsPromotionAllowed is CheckPromotion reduced to its decision.
func IsPromotionAllowed(currentPrice float64, d Discount, costs Costs, taxes TaxRates, minMargin float64) bool {
	return CheckPromotion(currentPrice, d, costs, taxes, minMargin).Allowed
}

func maxDiscount(price, floor float64, kind DiscountKind) Discount {
	headroom := math.Max(0, price-floor)
	if kind == KindPercentage {
		if price <= 0 {
			return Percent(0)
		}
		return Percent(money.Round(headroom/price*100, 2))
	}
	return Fixed(money.Round(headroom, 2))
}

// Reason renders the user feedback for a rejected verdict.
func (v Verdict) Reason() string {
	if v.Allowed {
		return ""
	}
	if v.MaxDiscount.Kind == KindPercentage {
		return "Maximum allowed: " + money.FormatPercent(v.MaxDiscount.Value)
	}
	return "Maximum allowed: " + money.Format(v.MaxDiscount.Value) + " (floor price " + money.Format(v.FloorPrice) + ")"
}
