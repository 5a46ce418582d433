package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
	"github.com/Simplici0/price-ranger/internal/store"
)

type boardCard struct {
	estimate.Opportunity
	Display string `json:"display"`
}

func (s *server) handleOpportunitiesList(w http.ResponseWriter, r *http.Request) {
	opps, err := s.repo.Load(r.Context())
	if err != nil {
		log.Printf("load board: %v", err)
		http.Error(w, "failed to load opportunities", http.StatusInternalServerError)
		return
	}

	cards := make([]boardCard, 0, len(opps))
	for _, opp := range opps {
		cards = append(cards, boardCard{Opportunity: opp, Display: estimate.Summarize(opp).Display})
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *server) handleOpportunitiesReplace(w http.ResponseWriter, r *http.Request) {
	var opps []estimate.Opportunity
	if err := decodeJSON(r, &opps); err != nil {
		http.Error(w, "invalid opportunities", http.StatusBadRequest)
		return
	}

	now := s.clock().UTC()
	for i := range opps {
		opps[i].EnsureIDs()
		opps[i].Reprice()
		if opps[i].CreatedAt.IsZero() {
			opps[i].CreatedAt = now
		}
		opps[i].UpdatedAt = now
	}

	if err := s.repo.Save(r.Context(), opps); err != nil {
		log.Printf("save board: %v", err)
		http.Error(w, "failed to save opportunities", http.StatusInternalServerError)
		return
	}

	if opps == nil {
		opps = []estimate.Opportunity{}
	}
	writeJSON(w, http.StatusOK, opps)
}

func (s *server) handleOpportunityGet(w http.ResponseWriter, r *http.Request) {
	opp, ok := s.loadOpportunity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

func (s *server) handleOpportunitySummary(w http.ResponseWriter, r *http.Request) {
	opp, ok := s.loadOpportunity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, estimate.Summarize(opp))
}

// loadOpportunity reads the {id} route param and writes the error response
// itself when the opportunity cannot be returned.
func (s *server) loadOpportunity(w http.ResponseWriter, r *http.Request) (estimate.Opportunity, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid opportunity id", http.StatusBadRequest)
		return estimate.Opportunity{}, false
	}

	opp, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return estimate.Opportunity{}, false
	}
	if err != nil {
		log.Printf("get opportunity %s: %v", id, err)
		http.Error(w, "failed to load opportunity", http.StatusInternalServerError)
		return estimate.Opportunity{}, false
	}
	return opp, true
}

type rollupResponse struct {
	Columns []estimate.ColumnRollup `json:"columns"`
	Total   estimate.Range          `json:"total"`
	Priced  bool                    `json:"priced"`
	Display string                  `json:"display"`
}

func (s *server) handleBoardRollup(w http.ResponseWriter, r *http.Request) {
	opps, err := s.repo.Load(r.Context())
	if err != nil {
		log.Printf("load board: %v", err)
		http.Error(w, "failed to load opportunities", http.StatusInternalServerError)
		return
	}

	resp := rollupResponse{Columns: estimate.RollupColumns(opps)}
	resp.Total, resp.Priced = estimate.Rollup(opps)
	if resp.Priced {
		resp.Display = resp.Total.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type compareOption struct {
	Name     string `json:"name"`
	Display  string `json:"display"`
	Original string `json:"original,omitempty"`
	Approved bool   `json:"approved"`
}

type comparePackage struct {
	Options []compareOption `json:"options"`
	Display string          `json:"display"`
	Decided bool            `json:"decided"`
}

type comparePromotion struct {
	Type       string `json:"type"`
	Discount   string `json:"discount"`
	ValidUntil string `json:"validUntil,omitempty"`
	Expired    bool   `json:"expired"`
}

type financingQuote struct {
	Plan           pricing.FinancingOption `json:"plan"`
	MonthlyPayment float64                 `json:"monthlyPayment"`
	Display        string                  `json:"display"`
}

type compareView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Promotion *comparePromotion `json:"promotion,omitempty"`
	Packages  []comparePackage  `json:"packages"`
	Approved  bool              `json:"approved"`
	Display   string            `json:"display"`
	AsLowAs   *financingQuote   `json:"asLowAs,omitempty"`
	Financing []financingQuote  `json:"financing,omitempty"`
}

// handleCompare serves the customer-facing comparison: identical packages
// appear once and the as-low-as payment uses the opportunity's plan.
func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	opp, ok := s.loadOpportunity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.buildCompareView(r, opp))
}

func (s *server) buildCompareView(r *http.Request, opp estimate.Opportunity) compareView {
	summary := estimate.Summarize(opp)
	view := compareView{
		ID:       opp.ID,
		Title:    opp.Title,
		Packages: make([]comparePackage, 0, len(summary.Groups)),
		Approved: summary.Approved,
		Display:  summary.Display,
	}

	if opp.Promotion != nil {
		view.Promotion = &comparePromotion{
			Type:       opp.Promotion.Type,
			Discount:   opp.Promotion.Discount.String(),
			ValidUntil: opp.Promotion.ValidUntil,
			Expired:    opp.Promotion.Expired(s.clock()),
		}
	}

	for _, g := range estimate.DedupeGroups(summary.Groups) {
		lo, hi := g.Bounds()
		pkg := comparePackage{
			Options: make([]compareOption, 0, len(g.Options)),
			Display: money.FormatRange(lo, hi),
			Decided: g.IsDecided,
		}
		for _, o := range g.Options {
			pkg.Options = append(pkg.Options, describeOption(o, opp.Promotion))
		}
		view.Packages = append(view.Packages, pkg)
	}

	plans := s.plans(r.Context())
	plan := plans[0]
	if opp.Financing != nil {
		plan = *opp.Financing
	}
	if payment, ok := estimate.AsLowAs(summary, plan); ok {
		view.AsLowAs = &financingQuote{Plan: plan, MonthlyPayment: payment, Display: money.Format(payment) + "/mo"}
		for _, p := range plans {
			monthly := p.Payment(summary.Range.Min)
			view.Financing = append(view.Financing, financingQuote{Plan: p, MonthlyPayment: monthly, Display: money.Format(monthly) + "/mo"})
		}
	}

	return view
}

// describeOption renders an option's price and, when a promotion lowered it,
// the price before the discount.
func describeOption(o estimate.Option, promo *pricing.Promotion) compareOption {
	lo, hi := o.Bounds(promo)
	c := compareOption{Name: o.Name, Display: money.FormatRange(lo, hi), Approved: o.IsApproved}

	base := o
	base.Promotion, base.FinalPrice = nil, nil
	origLo, origHi := base.Bounds(nil)
	if origLo > lo || origHi > hi {
		c.Original = money.FormatRange(origLo, origHi)
	}
	return c
}
