package pricing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/shopspring/decimal"
)

// DiscountKind tells how a Discount value is interpreted.
type DiscountKind string

const (
	KindPercentage DiscountKind = "percentage"
	KindFixed      DiscountKind = "fixed"
)

// Discount is a percentage or fixed-amount reduction. The zero value is a
// fixed discount of 0.
type Discount struct {
	Kind  DiscountKind
	Value float64
}

// Percent returns a percentage discount.
func Percent(v float64) Discount { return Discount{Kind: KindPercentage, Value: v} }

// Fixed returns a fixed-amount discount.
func Fixed(v float64) Discount { return Discount{Kind: KindFixed, Value: v} }

// ParseDiscount decodes the stored string form: "15%" is a percentage,
// anything else ("$50", "50") is a fixed amount. Only digits and dots count
// towards the magnitude; garbage yields 0.
func ParseDiscount(s string) Discount {
	kind := KindFixed
	if strings.Contains(s, "%") {
		kind = KindPercentage
	}
	return Discount{Kind: kind, Value: money.ParseMagnitude(s)}
}

// String encodes d in the stored form.
func (d Discount) String() string {
	v := decimal.NewFromFloat(money.OrZero(d.Value)).String()
	if d.Kind == KindPercentage {
		return v + "%"
	}
	return "$" + v
}

// IsZero reports whether d takes nothing off.
func (d Discount) IsZero() bool {
	return d.Value <= 0 || !money.Finite(d.Value)
}

func (d Discount) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the string form as well as a bare number, which is
// read as a fixed amount.
func (d *Discount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = ParseDiscount(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Fixed(money.OrZero(n))
		return nil
	}
	*d = Discount{}
	return nil
}

// DiscountAmount returns how much d takes off price. The amount never exceeds
// the price itself and is not rounded; rounding happens at display.
func DiscountAmount(price float64, d Discount) float64 {
	price = money.OrZero(price)
	if price <= 0 || d.IsZero() {
		return 0
	}

	p := decimal.NewFromFloat(price)
	amount := decimal.NewFromFloat(money.OrZero(d.Value))
	if d.Kind == KindPercentage {
		amount = p.Mul(amount).Div(decimal.NewFromInt(100))
	}
	if amount.GreaterThan(p) {
		amount = p
	}
	f, _ := amount.Float64()
	return money.OrZero(f)
}

// ApplyDiscount returns price after d, never below zero.
func ApplyDiscount(price float64, d Discount) float64 {
	price = money.OrZero(price)
	final := money.Sum(price, -DiscountAmount(price, d))
	if final < 0 {
		return 0
	}
	return final
}

// Promotion is a named discount offered on an option or opportunity.
type Promotion struct {
	Type       string   `json:"type"`
	Discount   Discount `json:"discount"`
	ValidUntil string   `json:"validUntil,omitempty"`
}

// Apply is ApplyDiscount with the promotion's discount.
func (p Promotion) Apply(price float64) float64 {
	return ApplyDiscount(price, p.Discount)
}

// Expired reports whether ValidUntil (YYYY-MM-DD) is before now's date.
// Promotions without a parseable date never expire.
func (p Promotion) Expired(now time.Time) bool {
	until, err := time.Parse(time.DateOnly, strings.TrimSpace(p.ValidUntil))
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return until.Before(today)
}
