package estimate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// Opportunity is a sales deal shown as a card on the board.
type Opportunity struct {
	ID        string                   `json:"id"`
	Title     string                   `json:"title"`
	Column    string                   `json:"column"`
	Position  int                      `json:"position"`
	Promotion *pricing.Promotion       `json:"promotion,omitempty"`
	Options   []Option                 `json:"options"`
	Operators []Operator               `json:"operators"`
	Financing *pricing.FinancingOption `json:"financing,omitempty"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// NewOpportunity returns an empty opportunity with a fresh ID.
func NewOpportunity(title, column string) Opportunity {
	now := time.Now().UTC()
	return Opportunity{
		ID:        uuid.NewString(),
		Title:     title,
		Column:    column,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnsureIDs assigns IDs to the opportunity and any option missing one.
func (o *Opportunity) EnsureIDs() {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for i := range o.Options {
		if o.Options[i].ID == "" {
			o.Options[i].ID = uuid.NewString()
		}
	}
}

// Reprice recomputes every option's derived figures against the
// opportunity's promotion.
func (o *Opportunity) Reprice() {
	for i := range o.Options {
		o.Options[i] = o.Options[i].Reprice(o.Promotion)
	}
}

// Groups runs Aggregate over the opportunity's options.
func (o Opportunity) Groups() []Group {
	return Aggregate(o.Options, o.Operators, o.Promotion)
}

// Summary is what a card or compare view shows for one opportunity.
type Summary struct {
	Groups        []Group `json:"groups"`
	Range         Range   `json:"range"`
	HasRange      bool    `json:"hasRange"`
	Approved      bool    `json:"approved"`
	ApprovedTotal float64 `json:"approvedTotal"`
	ShowAsLowAs   bool    `json:"showAsLowAs"`
	Display       string  `json:"display"`
}

// Summarize aggregates opp from scratch. An opportunity with any approved
// option is decided: its range collapses to the sum of approved options.
func Summarize(opp Opportunity) Summary {
	s := Summary{Groups: opp.Groups()}

	var approved []float64
	for _, o := range opp.Options {
		if o.IsApproved {
			s.Approved = true
			approved = append(approved, o.EffectivePrice(opp.Promotion))
		}
		if o.ShowAsLowAsPrice {
			s.ShowAsLowAs = true
		}
	}

	switch {
	case s.Approved:
		s.ApprovedTotal = money.Sum(approved...)
		s.Range = Range{Min: s.ApprovedTotal, Max: s.ApprovedTotal}
		s.HasRange = true
	default:
		s.Range, s.HasRange = RangeAcrossGroups(s.Groups)
	}

	if s.HasRange {
		s.Display = s.Range.String()
	}
	return s
}

// AsLowAs returns the monthly payment for the cheapest package under plan.
// It reports false when no option asks for the financing figure.
func AsLowAs(s Summary, plan pricing.FinancingOption) (float64, bool) {
	if !s.ShowAsLowAs || !s.HasRange {
		return 0, false
	}
	return plan.Payment(s.Range.Min), true
}

// Rollup sums opportunity ranges: decided opportunities add their approved
// total to both bounds, the rest add their own min and max. It reports false
// when no opportunity has a price.
func Rollup(opps []Opportunity) (Range, bool) {
	var total Range
	priced := false
	for _, opp := range opps {
		s := Summarize(opp)
		if !s.HasRange {
			continue
		}
		total = total.Add(s.Range)
		priced = true
	}
	return total, priced
}

// ColumnRollup is the rollup of one board column.
type ColumnRollup struct {
	Column  string `json:"column"`
	Count   int    `json:"count"`
	Range   Range  `json:"range"`
	Priced  bool   `json:"priced"`
	Display string `json:"display"`
}

// RollupColumns rolls up opportunities per column. Columns appear in the
// order of their first card by position.
func RollupColumns(opps []Opportunity) []ColumnRollup {
	sorted := append([]Opportunity(nil), opps...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	byColumn := make(map[string][]Opportunity)
	var order []string
	for _, opp := range sorted {
		if _, ok := byColumn[opp.Column]; !ok {
			order = append(order, opp.Column)
		}
		byColumn[opp.Column] = append(byColumn[opp.Column], opp)
	}

	out := make([]ColumnRollup, 0, len(order))
	for _, col := range order {
		r, ok := Rollup(byColumn[col])
		cr := ColumnRollup{Column: col, Count: len(byColumn[col]), Range: r, Priced: ok}
		if ok {
			cr.Display = r.String()
		}
		out = append(out, cr)
	}
	return out
}
