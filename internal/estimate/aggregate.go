package estimate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// Group is a package: options bundled with "and". Groups are alternatives to
// each other.
type Group struct {
	Options       []Option `json:"options"`
	Total         float64  `json:"total"`
	Low           float64  `json:"low"`
	High          float64  `json:"high"`
	ApprovedTotal float64  `json:"approvedTotal"`
	IsDecided     bool     `json:"isDecided"`
}

// DisplayTotal is the approved total for decided groups, the package total
// otherwise.
func (g Group) DisplayTotal() float64 {
	if g.IsDecided {
		return g.ApprovedTotal
	}
	return g.Total
}

// Bounds is the low and high figure g contributes to a range.
func (g Group) Bounds() (float64, float64) {
	if g.IsDecided {
		return g.ApprovedTotal, g.ApprovedTotal
	}
	return g.Low, g.High
}

// IDs returns the option IDs of g in their original order.
func (g Group) IDs() []string {
	ids := make([]string, 0, len(g.Options))
	for _, o := range g.Options {
		ids = append(ids, o.ID)
	}
	return ids
}

// Aggregate splits options into packages. operators[i] relates options[i] and
// options[i+1]; missing operators count as "and", extra ones are ignored.
// The input slices are not modified.
func Aggregate(options []Option, operators []Operator, promo *pricing.Promotion) []Group {
	if len(options) == 0 {
		return nil
	}

	groups := make([]Group, 0, 1)
	start := 0
	for i := 0; i < len(options)-1; i++ {
		if i < len(operators) && operators[i].IsOr() {
			groups = append(groups, newGroup(options[start:i+1], promo))
			start = i + 1
		}
	}
	groups = append(groups, newGroup(options[start:], promo))

	return groups
}

func newGroup(options []Option, promo *pricing.Promotion) Group {
	g := Group{Options: append([]Option(nil), options...)}

	var lows, highs, approved []float64
	for _, o := range g.Options {
		lo, hi := o.Bounds(promo)
		lows = append(lows, lo)
		highs = append(highs, hi)
		if o.IsApproved {
			g.IsDecided = true
			approved = append(approved, lo)
		}
	}

	g.Low = money.Sum(lows...)
	g.Total = g.Low
	g.High = money.Sum(highs...)
	g.ApprovedTotal = money.Sum(approved...)
	return g
}

// Range is a min/max price pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Single reports whether the range collapses to one displayed value.
func (r Range) Single() bool {
	return money.Format(r.Min) == money.Format(r.Max)
}

// String renders "$min - $max", or a single value.
func (r Range) String() string {
	return money.FormatRange(r.Min, r.Max)
}

// Add sums two ranges bound by bound.
func (r Range) Add(o Range) Range {
	return Range{Min: money.Sum(r.Min, o.Min), Max: money.Sum(r.Max, o.Max)}
}

// RangeAcrossGroups returns the lowest and highest package figure. It reports
// false when there are no groups.
func RangeAcrossGroups(groups []Group) (Range, bool) {
	if len(groups) == 0 {
		return Range{}, false
	}

	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, g := range groups {
		lo, hi := g.Bounds()
		r.Min = math.Min(r.Min, lo)
		r.Max = math.Max(r.Max, hi)
	}
	return r, true
}

// DedupeGroups drops groups whose set of option IDs repeats an earlier
// group's, in any order and with any repetition. Options without an ID are
// never equal to each other. The first occurrence wins.
func DedupeGroups(groups []Group) []Group {
	seen := make(map[string]struct{}, len(groups))
	out := make([]Group, 0, len(groups))
	for gi, g := range groups {
		key := groupKey(gi, g)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, g)
	}
	return out
}

func groupKey(gi int, g Group) string {
	set := make(map[string]struct{}, len(g.Options))
	for oi, o := range g.Options {
		id := o.ID
		if id == "" {
			id = fmt.Sprintf("\x01%d.%d", gi, oi)
		}
		set[id] = struct{}{}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
