package estimate

import (
	"encoding/json"
	"testing"

	"github.com/Simplici0/price-ranger/internal/pricing"
)

func TestSummarize_PackageTotalVersusApprovedRollup(t *testing.T) {
	opp := Opportunity{
		ID:        "opp-1",
		Options:   []Option{{ID: "A", Price: 100, IsApproved: true}, opt("B", 900)},
		Operators: []Operator{And},
	}

	s := Summarize(opp)

	nearlyEqual(t, "package total", s.Groups[0].Total, 1000)
	if !s.Approved {
		t.Fatalf("expected opportunity to be approved")
	}
	nearlyEqual(t, "approved total", s.ApprovedTotal, 100)
	nearlyEqual(t, "min", s.Range.Min, 100)
	nearlyEqual(t, "max", s.Range.Max, 100)
	if s.Display != "$100" {
		t.Fatalf("display = %q", s.Display)
	}
}

func TestSummarize_NoOptions(t *testing.T) {
	s := Summarize(Opportunity{ID: "empty"})
	if s.HasRange || s.Display != "" || len(s.Groups) != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestRollup_MixesApprovedAndOpen(t *testing.T) {
	approved := Opportunity{
		Options:   []Option{{ID: "A", Price: 100, IsApproved: true}, opt("B", 900)},
		Operators: []Operator{And},
	}
	open := Opportunity{
		Options:   []Option{opt("C", 300), opt("D", 500)},
		Operators: []Operator{Or},
	}

	r, ok := Rollup([]Opportunity{approved, open, {}})

	if !ok {
		t.Fatalf("expected a rollup")
	}
	nearlyEqual(t, "min", r.Min, 400)
	nearlyEqual(t, "max", r.Max, 600)
}

func TestRollupColumns(t *testing.T) {
	opps := []Opportunity{
		{Column: "Proposal", Position: 2, Options: []Option{opt("A", 1000)}},
		{Column: "Lead", Position: 1, Options: []Option{opt("B", 200), opt("C", 400)}, Operators: []Operator{Or}},
		{Column: "Proposal", Position: 3, Options: []Option{opt("D", 500)}},
		{Column: "Won", Position: 4},
	}

	cols := RollupColumns(opps)

	if len(cols) != 3 || cols[0].Column != "Lead" || cols[1].Column != "Proposal" || cols[2].Column != "Won" {
		t.Fatalf("unexpected columns: %+v", cols)
	}
	if cols[0].Display != "$200 - $400" {
		t.Fatalf("lead display = %q", cols[0].Display)
	}
	if cols[1].Count != 2 || cols[1].Display != "$1,500" {
		t.Fatalf("proposal rollup = %+v", cols[1])
	}
	if cols[2].Priced {
		t.Fatalf("expected empty column to be unpriced")
	}
}

func TestAsLowAs(t *testing.T) {
	opp := Opportunity{
		Options:   []Option{{ID: "A", Price: 30000, ShowAsLowAsPrice: true}, opt("B", 45000)},
		Operators: []Operator{Or},
	}
	plan := pricing.FinancingOption{APR: 0, TermMonths: 60}

	payment, ok := AsLowAs(Summarize(opp), plan)
	if !ok {
		t.Fatalf("expected financing figure")
	}
	nearlyEqual(t, "payment", payment, 500)

	if _, ok := AsLowAs(Summarize(Opportunity{Options: []Option{opt("A", 100)}}), plan); ok {
		t.Fatalf("expected no financing figure without showAsLowAsPrice")
	}
}

func TestOpportunityReprice(t *testing.T) {
	opp := Opportunity{
		Promotion: &pricing.Promotion{Discount: pricing.Percent(10)},
		Options: []Option{
			opt("A", 1000),
			{ID: "B", Details: &pricing.Details{
				Costs:        pricing.Costs{Material: 1000, Labor: 500},
				TaxRates:     pricing.TaxRates{Material: 10},
				ProfitMargin: 30,
				TotalPrice:   2050,
			}},
			opt("C", 0),
		},
	}

	opp.Reprice()

	nearlyEqual(t, "A final", *opp.Options[0].FinalPrice, 900)
	nearlyEqual(t, "B price", opp.Options[1].Price, 2050)
	nearlyEqual(t, "B tax", opp.Options[1].Details.TotalTax, 100)
	nearlyEqual(t, "B final", *opp.Options[1].FinalPrice, 1845)
	if opp.Options[2].FinalPrice != nil {
		t.Fatalf("expected unpriced option to have no final price")
	}
}

func TestEnsureIDs(t *testing.T) {
	opp := Opportunity{Options: []Option{{}, {ID: "keep"}}}

	opp.EnsureIDs()

	if opp.ID == "" || opp.Options[0].ID == "" || opp.Options[1].ID != "keep" {
		t.Fatalf("unexpected ids: %+v", opp)
	}
}

func TestOpportunityJSONRoundTrip(t *testing.T) {
	in := `{"id":"o1","title":"Roof","column":"Lead","position":0,
		"promotion":{"type":"Spring","discount":"$50"},
		"options":[{"id":"a","price":500,"isApproved":false,"showAsLowAsPrice":true}],
		"operators":[{"type":"or"}]}`

	var opp Opportunity
	if err := json.Unmarshal([]byte(in), &opp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(opp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var again Opportunity
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal again: %v", err)
	}
	if again.Promotion.Discount != pricing.Fixed(50) || !again.Options[0].ShowAsLowAsPrice || !again.Operators[0].IsOr() {
		t.Fatalf("round trip lost data: %s", out)
	}
}

func TestOptionReprice_KeepsAuthoredFinalPrice(t *testing.T) {
	final := 800.0
	o := Option{ID: "a", Price: 1000, FinalPrice: &final}

	got := o.Reprice(nil)

	if got.FinalPrice == nil {
		t.Fatalf("expected authored final price to survive")
	}
	nearlyEqual(t, "final", *got.FinalPrice, 800)
	nearlyEqual(t, "effective", got.EffectivePrice(nil), 800)

	promoted := o.Reprice(&pricing.Promotion{Discount: pricing.Percent(10)})
	nearlyEqual(t, "promoted final", *promoted.FinalPrice, 900)
}
