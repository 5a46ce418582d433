// Package money holds the currency helpers shared by the pricing core and the
// HTTP layer: lenient parsing, rounding, summing and display formatting.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Finite reports whether v is neither NaN nor an infinity.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrZero returns v, or 0 when v is not finite.
func OrZero(v float64) float64 {
	if !Finite(v) {
		return 0
	}
	return v
}

// ParseAmount parses a user-entered amount such as "1200", "$1,200.50" or
// "-15". Anything that is not a digit, a dot or a leading minus is ignored.
// Unparseable input yields 0.
func ParseAmount(s string) float64 {
	v, _ := TryParseAmount(s)
	return v
}

// TryParseAmount is ParseAmount that also reports whether s held a number.
func TryParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	d, ok := parseDigits(s)
	if !ok {
		return 0, false
	}
	if neg {
		d = d.Neg()
	}
	return OrZero(toFloat(d)), true
}

// ParseMagnitude extracts the unsigned magnitude of s, keeping only digits and
// dots. It is the parsing rule used for promotion discount strings.
func ParseMagnitude(s string) float64 {
	d, ok := parseDigits(s)
	if !ok {
		return 0
	}
	return toFloat(d)
}

func parseDigits(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	if !Finite(v) {
		return 0
	}
	return toFloat(decimal.NewFromFloat(v).Round(places))
}

// Sum adds values in decimal space so that long option lists do not drift.
// Non-finite values count as 0.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if !Finite(v) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return toFloat(total)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Format renders v in whole currency units, e.g. "$12,500".
func Format(v float64) string {
	amount := decimal.NewFromFloat(OrZero(v)).Round(0).IntPart()

	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 2)
	if neg {
		b.WriteString("-$")
	} else {
		b.WriteString("$")
	}

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

// FormatRange renders a price range. Equal bounds (after rounding to whole
// units) collapse to a single value.
func FormatRange(min, max float64) string {
	lo, hi := Format(min), Format(max)
	if lo == hi {
		return lo
	}
	return lo + " - " + hi
}

// FormatPercent renders p with at most two decimals, e.g. "28.57%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(OrZero(p)).Round(2).String() + "%"
}
