package main

import (
	"net/http"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

type paymentRequest struct {
	Principal  float64  `json:"principal"`
	APR        *float64 `json:"apr"`
	TermMonths *int     `json:"termMonths"`
}

type paymentResponse struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	APR            float64 `json:"apr"`
	TermMonths     int     `json:"termMonths"`
	Display        string  `json:"display"`
}

func (s *server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid payment request", http.StatusBadRequest)
		return
	}

	plan := s.pricing.DefaultFinancing()
	if req.APR != nil {
		plan.APR = *req.APR
	}
	if req.TermMonths != nil && *req.TermMonths > 0 {
		plan.TermMonths = *req.TermMonths
	}

	payment := plan.Payment(req.Principal)
	writeJSON(w, http.StatusOK, paymentResponse{
		MonthlyPayment: payment,
		TotalInterest:  pricing.TotalInterest(req.Principal, plan.APR, plan.TermMonths),
		APR:            plan.APR,
		TermMonths:     plan.TermMonths,
		Display:        money.Format(payment) + "/mo",
	})
}

type discountRequest struct {
	Price    float64          `json:"price"`
	Discount pricing.Discount `json:"discount"`
}

type discountResponse struct {
	FinalPrice     float64          `json:"finalPrice"`
	DiscountAmount float64          `json:"discountAmount"`
	Discount       pricing.Discount `json:"discount"`
}

func (s *server) handleDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid discount request", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, discountResponse{
		FinalPrice:     pricing.ApplyDiscount(req.Price, req.Discount),
		DiscountAmount: pricing.DiscountAmount(req.Price, req.Discount),
		Discount:       req.Discount,
	})
}

type forwardRequest struct {
	pricing.Costs
	pricing.TaxRates
	ProfitMargin float64 `json:"profitMargin"`
}

type forwardResponse struct {
	pricing.Quote
	MarginWarning bool `json:"marginWarning"`
}

func (s *server) handleForward(w http.ResponseWriter, r *http.Request) {
	var req forwardRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid forward pricing request", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, forwardResponse{
		Quote:         pricing.ComputePriceForward(req.Costs, req.TaxRates, req.ProfitMargin),
		MarginWarning: req.ProfitMargin < s.pricing.MinMarginPercent,
	})
}

type reverseRequest struct {
	pricing.Costs
	pricing.TaxRates
	TotalPrice float64 `json:"totalPrice"`
}

type reverseResponse struct {
	ProfitMargin  float64 `json:"profitMargin"`
	MarginWarning bool    `json:"marginWarning"`
}

func (s *server) handleReverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid reverse pricing request", http.StatusBadRequest)
		return
	}

	margin := pricing.ComputeMarginReverse(req.Costs, req.TaxRates, req.TotalPrice)
	writeJSON(w, http.StatusOK, reverseResponse{
		ProfitMargin:  margin,
		MarginWarning: margin < s.pricing.MinMarginPercent,
	})
}

type editRequest struct {
	Details pricing.Details `json:"details"`
	Field   pricing.Field   `json:"field"`
	Value   float64         `json:"value"`
}

func (s *server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid edit request", http.StatusBadRequest)
		return
	}
	if !req.Field.Valid() {
		http.Error(w, "unknown field "+string(req.Field), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, req.Details.Edit(req.Field, req.Value, s.pricing.MinMarginPercent))
}

type promotionCheckRequest struct {
	pricing.Costs
	pricing.TaxRates
	CurrentPrice     float64          `json:"currentPrice"`
	Discount         pricing.Discount `json:"discount"`
	MinMarginPercent *float64         `json:"minMarginPercent"`
}

type promotionCheckResponse struct {
	pricing.Verdict
	Reason string `json:"reason,omitempty"`
}

func (s *server) handlePromotionCheck(w http.ResponseWriter, r *http.Request) {
	var req promotionCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid promotion check request", http.StatusBadRequest)
		return
	}

	minMargin := s.pricing.MinMarginPercent
	if req.MinMarginPercent != nil {
		minMargin = *req.MinMarginPercent
	}

	verdict := pricing.CheckPromotion(req.CurrentPrice, req.Discount, req.Costs, req.TaxRates, minMargin)
	writeJSON(w, http.StatusOK, promotionCheckResponse{Verdict: verdict, Reason: verdict.Reason()})
}

type packagesRequest struct {
	Options   []estimate.Option   `json:"options"`
	Operators []estimate.Operator `json:"operators"`
	Promotion *pricing.Promotion  `json:"promotion"`
}

func (s *server) handlePackages(w http.ResponseWriter, r *http.Request) {
	var req packagesRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid packages request", http.StatusBadRequest)
		return
	}

	opp := estimate.Opportunity{Options: req.Options, Operators: req.Operators, Promotion: req.Promotion}
	opp.Reprice()
	writeJSON(w, http.StatusOK, estimate.Summarize(opp))
}
