// Package store persists the opportunity board. The pricing core never sees
// it: handlers load a snapshot, compute, and save.
package store

import (
	"context"
	"errors"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// ErrNotFound is returned when an opportunity does not exist.
var ErrNotFound = errors.New("opportunity not found")

// Repository loads and saves the whole board.
type Repository interface {
	Load(ctx context.Context) ([]estimate.Opportunity, error)
	Save(ctx context.Context, opps []estimate.Opportunity) error
	Get(ctx context.Context, id string) (estimate.Opportunity, error)
}

// FinancingCatalog lists the financing plans offered next to prices.
type FinancingCatalog interface {
	ListFinancing(ctx context.Context) ([]pricing.FinancingOption, error)
}
