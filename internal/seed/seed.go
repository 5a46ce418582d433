package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/pricing"
	"github.com/Simplici0/price-ranger/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	Financing []pricing.FinancingOption
	DemoBoard bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, plan := range cfg.Financing {
		if err := ensureFinancing(ctx, tx, plan, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	if cfg.DemoBoard {
		inserted, err := EnsureDemoBoard(ctx, store.NewSQLiteRepository(db))
		if err != nil {
			return Stats{}, err
		}
		stats.Inserts += inserted
	}

	return stats, nil
}

func ensureFinancing(ctx context.Context, tx *sql.Tx, plan pricing.FinancingOption, stats *Stats) error {
	var (
		apr  float64
		term int
	)
	err := tx.QueryRowContext(ctx, `SELECT apr, term_months FROM financing_options WHERE name = ?`, plan.Name).Scan(&apr, &term)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO financing_options (name, apr, term_months, active)
			VALUES (?, ?, ?, TRUE)
		`, plan.Name, plan.APR, plan.TermMonths); err != nil {
			return fmt.Errorf("insert financing option %q: %w", plan.Name, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check financing option %q: %w", plan.Name, err)
	}

	if apr == plan.APR && term == plan.TermMonths {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE financing_options
		SET apr = ?, term_months = ?, active = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, plan.APR, plan.TermMonths, plan.Name); err != nil {
		return fmt.Errorf("update financing option %q: %w", plan.Name, err)
	}
	stats.Updates++
	return nil
}

// EnsureDemoBoard saves the demo board into repo when it is empty and returns
// how many opportunities were added.
func EnsureDemoBoard(ctx context.Context, repo store.Repository) (int, error) {
	existing, err := repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("check demo board: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	board := DemoBoard()
	if err := repo.Save(ctx, board); err != nil {
		return 0, fmt.Errorf("save demo board: %w", err)
	}
	return len(board), nil
}

// DemoBoard returns the sample opportunities loaded when DEMO_BOARD=1.
func DemoBoard() []estimate.Opportunity {
	kitchen := estimate.NewOpportunity("Kitchen remodel", "Lead")
	kitchen.Position = 1
	kitchen.Promotion = &pricing.Promotion{Type: "Spring savings", Discount: pricing.Percent(10), ValidUntil: "2026-06-30"}
	cabinets := estimate.NewOption("Cabinets")
	cabinets.Price = 12000
	cabinets.ShowAsLowAsPrice = true
	counters := estimate.NewOption("Quartz countertops")
	counters.Price = 4500
	full := estimate.NewOption("Full remodel")
	full.Price = 21000
	kitchen.Options = []estimate.Option{cabinets, counters, full}
	kitchen.Operators = []estimate.Operator{estimate.And, estimate.Or}
	kitchen.Reprice()

	roof := estimate.NewOpportunity("Roof replacement", "Proposal")
	roof.Position = 2
	details := pricing.Details{
		Costs:        pricing.Costs{Material: 7000, Labor: 3000},
		TaxRates:     pricing.TaxRates{Material: 8},
		ProfitMargin: 40,
	}
	details = details.Edit(pricing.FieldMargin, details.ProfitMargin, pricing.MinMarginPercent).Details
	asphalt := estimate.NewOption("Asphalt shingles")
	asphalt.Details = &details
	asphalt.IsApproved = true
	metal := estimate.NewOption("Standing seam metal")
	metal.PriceRange = &estimate.PriceRange{Min: 22000, Max: 26000}
	roof.Options = []estimate.Option{asphalt, metal}
	roof.Operators = []estimate.Operator{estimate.Or}
	roof.Reprice()

	return []estimate.Opportunity{kitchen, roof}
}
