package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// MemoryRepository keeps the board in process memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	opps      []estimate.Opportunity
	financing []pricing.FinancingOption
}

// NewMemoryRepository returns an empty board offering the given plans.
func NewMemoryRepository(financing []pricing.FinancingOption) *MemoryRepository {
	return &MemoryRepository{financing: append([]pricing.FinancingOption(nil), financing...)}
}

var (
	_ Repository       = (*MemoryRepository)(nil)
	_ FinancingCatalog = (*MemoryRepository)(nil)
)

func (r *MemoryRepository) Load(ctx context.Context) ([]estimate.Opportunity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.opps)
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (estimate.Opportunity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, opp := range r.opps {
		if opp.ID == id {
			out, err := clone([]estimate.Opportunity{opp})
			if err != nil {
				return estimate.Opportunity{}, err
			}
			return out[0], nil
		}
	}
	return estimate.Opportunity{}, ErrNotFound
}

func (r *MemoryRepository) Save(ctx context.Context, opps []estimate.Opportunity) error {
	saved, err := clone(opps)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range saved {
		saved[i].EnsureIDs()
		if saved[i].CreatedAt.IsZero() {
			saved[i].CreatedAt = now
		}
		if saved[i].UpdatedAt.IsZero() {
			saved[i].UpdatedAt = now
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.opps = saved
	return nil
}

func (r *MemoryRepository) ListFinancing(ctx context.Context) ([]pricing.FinancingOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]pricing.FinancingOption{}, r.financing...), nil
}

// clone deep-copies through the persisted JSON shape, so callers never share
// option slices or pointers with the repository.
func clone(opps []estimate.Opportunity) ([]estimate.Opportunity, error) {
	if opps == nil {
		return []estimate.Opportunity{}, nil
	}
	data, err := json.Marshal(opps)
	if err != nil {
		return nil, fmt.Errorf("encode opportunities: %w", err)
	}
	out := make([]estimate.Opportunity, 0, len(opps))
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode opportunities: %w", err)
	}
	return out, nil
}
