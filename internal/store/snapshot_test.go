package store

import (
	"context"
	"testing"

	"github.com/Simplici0/price-ranger/internal/estimate"
)

func TestDecodeSnapshotRepairsLooseJSON(t *testing.T) {
	for _, raw := range []string{
		`[{"id": "a", "price": 100}, {"id": "b", "details": {"price": "250"}},]`,
		`[{"id": "a", "price": 100}, {"id": "b", "details": {"price": "250"}}`,
	} {
		var options []estimate.Option
		if err := decodeSnapshot(raw, &options); err != nil {
			t.Fatalf("decodeSnapshot(%s): %v", raw, err)
		}
		if len(options) != 2 || options[0].Price != 100 || options[1].Price != 250 {
			t.Fatalf("decodeSnapshot(%s) = %+v", raw, options)
		}
	}
}

func TestLoadReadsLegacyRows(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	if _, err := database.Exec(`
		INSERT INTO opportunities (id, title, column_name, position, promotion_json, options_json, operators_json, created_at, updated_at)
		VALUES ('legacy', 'Old card', 'Lead', 1, '{"type": "Old", "discount": 50}',
			'[{"id": 7, "details": {"price": "1,200"}, "isApproved": "true"}]', '["or"]',
			'2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')
	`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	opp, err := NewSQLiteRepository(database).Get(ctx, "legacy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	option := opp.Options[0]
	if option.ID != "7" || option.Price != 1200 || !option.IsApproved {
		t.Fatalf("legacy option not normalized: %+v", option)
	}
	if opp.Promotion == nil || opp.Promotion.Apply(1200) != 1150 {
		t.Fatalf("legacy promotion not normalized: %+v", opp.Promotion)
	}
	if s := estimate.Summarize(opp); s.Display != "$1,150" {
		t.Fatalf("display = %q, want $1,150", s.Display)
	}
}

func TestLoadAssignsMissingOptionIDs(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)

	if _, err := database.Exec(`
		INSERT INTO opportunities (id, title, column_name, position, promotion_json, options_json, operators_json, created_at, updated_at)
		VALUES ('no-ids', 'Old card', 'Lead', 1, '',
			'[{"price": 100}, {"price": 200}]', '["or"]',
			'2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')
	`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	opp, err := NewSQLiteRepository(database).Get(ctx, "no-ids")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	a, b := opp.Options[0].ID, opp.Options[1].ID
	if a == "" || b == "" || a == b {
		t.Fatalf("option ids = %q, %q, want two distinct ids", a, b)
	}

	groups := estimate.DedupeGroups(estimate.Aggregate(opp.Options, opp.Operators, opp.Promotion))
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
}
