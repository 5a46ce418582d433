package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/price-ranger/internal/estimate"
	"github.com/Simplici0/price-ranger/internal/pricing"
)

// SQLiteRepository keeps one row per opportunity, with options, operators and
// promotion stored as JSON snapshots.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository wraps an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

var (
	_ Repository       = (*SQLiteRepository)(nil)
	_ FinancingCatalog = (*SQLiteRepository)(nil)
)

const selectOpportunities = `
	SELECT id, title, column_name, position, COALESCE(promotion_json, ''), COALESCE(financing_json, ''),
		options_json, operators_json, created_at, updated_at
	FROM opportunities
`

// Load returns the board ordered by position.
func (r *SQLiteRepository) Load(ctx context.Context) ([]estimate.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx, selectOpportunities+` ORDER BY position ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	opps := make([]estimate.Opportunity, 0)
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}

	return opps, nil
}

// Get returns one opportunity or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (estimate.Opportunity, error) {
	row := r.db.QueryRowContext(ctx, selectOpportunities+` WHERE id = ?`, id)
	opp, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return estimate.Opportunity{}, ErrNotFound
	}
	return opp, err
}

// Save replaces the stored board with opps in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, opps []estimate.Opportunity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM opportunities`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear opportunities: %w", err)
	}

	now := time.Now().UTC()
	for _, opp := range opps {
		if err := insertOpportunity(ctx, tx, opp, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func insertOpportunity(ctx context.Context, tx *sql.Tx, opp estimate.Opportunity, now time.Time) error {
	opp.EnsureIDs()
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = now
	}
	if opp.UpdatedAt.IsZero() {
		opp.UpdatedAt = now
	}
	if opp.Options == nil {
		opp.Options = []estimate.Option{}
	}
	if opp.Operators == nil {
		opp.Operators = []estimate.Operator{}
	}

	optionsJSON, err := json.Marshal(opp.Options)
	if err != nil {
		return fmt.Errorf("encode options of %s: %w", opp.ID, err)
	}
	operatorsJSON, err := json.Marshal(opp.Operators)
	if err != nil {
		return fmt.Errorf("encode operators of %s: %w", opp.ID, err)
	}
	promotionJSON, err := nullableJSON(opp.Promotion)
	if err != nil {
		return fmt.Errorf("encode promotion of %s: %w", opp.ID, err)
	}
	financingJSON, err := nullableJSON(opp.Financing)
	if err != nil {
		return fmt.Errorf("encode financing of %s: %w", opp.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO opportunities (
			id, title, column_name, position, promotion_json, financing_json,
			options_json, operators_json, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		opp.ID,
		opp.Title,
		opp.Column,
		opp.Position,
		promotionJSON,
		financingJSON,
		string(optionsJSON),
		string(operatorsJSON),
		opp.CreatedAt.UTC().Format(time.RFC3339Nano),
		opp.UpdatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

func nullableJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row scanner) (estimate.Opportunity, error) {
	var (
		opp                          estimate.Opportunity
		promotionJSON, financingJSON string
		optionsJSON, operatorsJSON   string
		createdAt, updatedAt         string
	)
	if err := row.Scan(
		&opp.ID,
		&opp.Title,
		&opp.Column,
		&opp.Position,
		&promotionJSON,
		&financingJSON,
		&optionsJSON,
		&operatorsJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return opp, err
		}
		return opp, fmt.Errorf("scan opportunity: %w", err)
	}

	if err := decodeSnapshot(optionsJSON, &opp.Options); err != nil {
		return opp, fmt.Errorf("decode options of %s: %w", opp.ID, err)
	}
	if err := decodeSnapshot(operatorsJSON, &opp.Operators); err != nil {
		return opp, fmt.Errorf("decode operators of %s: %w", opp.ID, err)
	}
	if promotionJSON != "" {
		var promo pricing.Promotion
		if err := decodeSnapshot(promotionJSON, &promo); err != nil {
			return opp, fmt.Errorf("decode promotion of %s: %w", opp.ID, err)
		}
		opp.Promotion = &promo
	}
	if financingJSON != "" {
		var plan pricing.FinancingOption
		if err := decodeSnapshot(financingJSON, &plan); err != nil {
			return opp, fmt.Errorf("decode financing of %s: %w", opp.ID, err)
		}
		opp.Financing = &plan
	}

	// Rows written before option IDs existed get them on read.
	opp.EnsureIDs()

	opp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	opp.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return opp, nil
}

// ListFinancing returns the active financing plans in creation order.
func (r *SQLiteRepository) ListFinancing(ctx context.Context) ([]pricing.FinancingOption, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, apr, term_months
		FROM financing_options
		WHERE active = TRUE
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query financing options: %w", err)
	}
	defer rows.Close()

	plans := make([]pricing.FinancingOption, 0)
	for rows.Next() {
		var plan pricing.FinancingOption
		if err := rows.Scan(&plan.Name, &plan.APR, &plan.TermMonths); err != nil {
			return nil, fmt.Errorf("scan financing option: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financing options: %w", err)
	}

	return plans, nil
}
