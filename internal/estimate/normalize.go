package estimate

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Simplici0/price-ranger/internal/money"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// rawOption mirrors every shape options have been saved in: price either at
// the top level or under details, numbers possibly stored as strings.
type rawOption struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	Price      json.RawMessage `json:"price"`
	FinalPrice json.RawMessage `json:"finalPrice"`
	PriceRange *struct {
		Min json.RawMessage `json:"min"`
		Max json.RawMessage `json:"max"`
	} `json:"priceRange"`
	Details *struct {
		Price json.RawMessage `json:"price"`
	} `json:"details"`
	Promotion        *pricing.Promotion `json:"promotion"`
	IsApproved       json.RawMessage    `json:"isApproved"`
	ShowAsLowAsPrice json.RawMessage    `json:"showAsLowAsPrice"`
	Calculated       json.RawMessage    `json:"calculatedPriceDetails"`
}

// UnmarshalJSON reads any stored option shape into the canonical one. Values
// that do not parse become zero rather than failing the whole document.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw rawOption
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Option{
		ID:               text(raw.ID),
		Name:             raw.Name,
		Promotion:        raw.Promotion,
		IsApproved:       flag(raw.IsApproved),
		ShowAsLowAsPrice: flag(raw.ShowAsLowAsPrice),
	}

	if v, ok := number(raw.Price); ok {
		o.Price = v
	} else if raw.Details != nil {
		o.Price, _ = number(raw.Details.Price)
	}
	if v, ok := number(raw.FinalPrice); ok {
		o.FinalPrice = &v
	}
	if raw.PriceRange != nil {
		lo, _ := number(raw.PriceRange.Min)
		hi, _ := number(raw.PriceRange.Max)
		o.PriceRange = &PriceRange{Min: lo, Max: hi}
	}
	if present(raw.Calculated) {
		var d pricing.Details
		if err := json.Unmarshal(raw.Calculated, &d); err == nil {
			o.Details = &d
		}
	}
	return nil
}

// UnmarshalJSON accepts {"type":"or"} as well as a bare "or".
func (op *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		op.Type = OperatorType(strings.ToLower(strings.TrimSpace(s)))
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		op.Type = OperatorAnd
		return nil
	}
	op.Type = OperatorType(strings.ToLower(strings.TrimSpace(obj.Type)))
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func number(raw json.RawMessage) (float64, bool) {
	if !present(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return money.OrZero(f), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return money.TryParseAmount(s)
	}
	return 0, false
}

func text(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func flag(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	return false
}
