package sqlite

import (
	"testing"

	"github.com/myrjola/habitapp/internal/testhelpers"
)

func TestNewDatabase(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	// A second run must be a no-op for both the schema and the fixtures.
	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, fixtures); err != nil {
		t.Fatalf("apply fixtures again: %v", err)
	}

	for table, want := range map[string]int{
		"variable_meals": 6,
		"fixed_meals":    5,
		"shot_types":     8,
		"grocery_items":  23,
	} {
		var got int
		if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s has %d rows, want %d", table, got, want)
		}
	}

	if _, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM shot_types"); err == nil {
		t.Error("expected the read-only pool to refuse writes")
	}
}
