package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/price-ranger/internal/config"
	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/pricing"
	"github.com/Simplici0/price-ranger/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	plans := []pricing.FinancingOption{{Name: "Standard", APR: 6.99, TermMonths: 60}}
	mem := store.NewMemoryRepository(plans)
	return &server{
		repo:      mem,
		financing: mem,
		pricing: config.Pricing{
			MinMarginPercent:  30,
			DefaultAPR:        6.99,
			DefaultTermMonths: 60,
			Financing:         plans,
		},
		now: func() time.Time { return time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHandlePaymentUsesConfiguredDefaults(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/payment", `{"principal": 10000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp paymentResponse
	decodeBody(t, rr, &resp)
	if want := pricing.MonthlyPayment(10000, 6.99, 60); resp.MonthlyPayment != want {
		t.Fatalf("monthlyPayment = %v, want %v", resp.MonthlyPayment, want)
	}
	if resp.TermMonths != 60 || resp.APR != 6.99 {
		t.Fatalf("unexpected plan: %+v", resp)
	}
}

func TestHandlePaymentZeroAPR(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/payment", `{"principal": 1200, "apr": 0, "termMonths": 12}`)
	var resp paymentResponse
	decodeBody(t, rr, &resp)
	if resp.MonthlyPayment != 100 || resp.Display != "$100/mo" || resp.TotalInterest != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHandleDiscountAcceptsStoredForm(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/discount", `{"price": 1000, "discount": "15%"}`)
	var resp discountResponse
	decodeBody(t, rr, &resp)
	if resp.FinalPrice != 850 || resp.DiscountAmount != 150 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Discount != pricing.Percent(15) {
		t.Fatalf("discount = %+v, want 15%%", resp.Discount)
	}
}

func TestHandleForwardAndReverse(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/forward",
		`{"materialCost": 1000, "laborCost": 500, "materialTax": 10, "profitMargin": 20}`)
	var fwd forwardResponse
	decodeBody(t, rr, &fwd)
	if fwd.TotalPrice != 1900 || fwd.TotalTax != 100 || !fwd.MarginWarning {
		t.Fatalf("unexpected forward response: %+v", fwd)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/pricing/reverse",
		`{"materialCost": 1000, "laborCost": 500, "materialTax": 10, "totalPrice": 2000}`)
	var rev reverseResponse
	decodeBody(t, rr, &rev)
	if rev.ProfitMargin != 20 || !rev.MarginWarning {
		t.Fatalf("unexpected reverse response: %+v", rev)
	}
}

func TestHandleEditRejectsUnknownField(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/edit", `{"details": {}, "field": "shipping", "value": 1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/pricing/edit",
		`{"details": {"materialCost": 1000, "profitMargin": 50}, "field": "totalPrice", "value": 2000}`)
	var edit pricing.Edit
	decodeBody(t, rr, &edit)
	if edit.Details.ProfitMargin != 50 || edit.Details.TotalPrice != 2000 || edit.MarginWarning {
		t.Fatalf("unexpected edit: %+v", edit)
	}
}

func TestHandlePromotionCheckRejectsDeepDiscount(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/promotion-check",
		`{"materialCost": 1000, "currentPrice": 2000, "discount": "60%"}`)
	var resp promotionCheckResponse
	decodeBody(t, rr, &resp)
	if resp.Allowed {
		t.Fatalf("expected the promotion to be rejected: %+v", resp)
	}
	if resp.Reason != "Maximum allowed: 28.57%" {
		t.Fatalf("reason = %q", resp.Reason)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/pricing/promotion-check",
		`{"materialCost": 1000, "currentPrice": 2000, "discount": "10%"}`)
	resp = promotionCheckResponse{}
	decodeBody(t, rr, &resp)
	if !resp.Allowed || resp.Reason != "" {
		t.Fatalf("expected the promotion to pass: %+v", resp)
	}
}

func TestHandlePackagesGroupsAlternatives(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/packages", `{
		"options": [{"id": "a", "price": 100}, {"id": "b", "price": "$200"}, {"id": "c", "price": 50}],
		"operators": ["or", {"type": "and"}]
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var summary estimate.Summary
	decodeBody(t, rr, &summary)
	if len(summary.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(summary.Groups))
	}
	if summary.Display != "$100 - $250" {
		t.Fatalf("display = %q, want $100 - $250", summary.Display)
	}
}

func TestInvalidJSONIsBadRequest(t *testing.T) {
	h := newTestServer(t).routes()

	for _, path := range []string{
		"/api/pricing/payment",
		"/api/pricing/discount",
		"/api/pricing/forward",
		"/api/pricing/reverse",
		"/api/pricing/edit",
		"/api/pricing/promotion-check",
		"/api/packages",
	} {
		rr := doJSON(t, h, http.MethodPost, path, `{`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, rr.Code)
		}
	}
}

func TestHandlePackagesKeepsAuthoredFinalPrice(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/packages", `{"options": [{"id": "a", "price": 1000, "finalPrice": 800}]}`)
	var summary estimate.Summary
	decodeBody(t, rr, &summary)

	if len(summary.Groups) != 1 || summary.Groups[0].Total != 800 || summary.Display != "$800" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestHandleForwardOverflowStaysEncodable(t *testing.T) {
	h := newTestServer(t).routes()

	rr := doJSON(t, h, http.MethodPost, "/api/pricing/forward", `{"materialCost": 1e308, "laborCost": 1e308, "profitMargin": 40}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var fwd forwardResponse
	decodeBody(t, rr, &fwd)
	if fwd.TotalCost != 0 || fwd.TotalPrice != 0 {
		t.Fatalf("unexpected forward response: %+v", fwd)
	}
}
