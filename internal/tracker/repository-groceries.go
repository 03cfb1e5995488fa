package tracker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/habitapp/internal/contexthelpers"
	"github.com/myrjola/habitapp/internal/errors"
)

// GroceryItem is a catalog entry of the grocery checklist and whether the user has it in the cart.
type GroceryItem struct {
	ID        string
	Name      string
	Quantity  string
	Category  string
	Checked   bool
	CheckedAt time.Time
}

// groceryRepository stores the checked state of the shared grocery catalog per user.
type groceryRepository struct {
	baseRepository
}

// List returns the whole catalog in display order with the checked state of the authenticated user.
func (r *groceryRepository) List(ctx context.Context) ([]GroceryItem, error) {
	items, err := queryList(ctx, r.db.ReadOnly, `SELECT i.id, i.name, i.quantity, i.category,
       COALESCE(c.checked, 0), c.checked_at
FROM grocery_items AS i
         LEFT JOIN grocery_checks AS c ON c.item_id = i.id AND c.user_id = ?
ORDER BY i.position`, func(s scanner) (GroceryItem, error) {
		var (
			item      GroceryItem
			checkedAt sql.NullString
		)
		if err := s.Scan(&item.ID, &item.Name, &item.Quantity, &item.Category, &item.Checked, &checkedAt); err != nil {
			return GroceryItem{}, err //nolint:wrapcheck // wrapped by queryList.
		}
		var err error
		item.CheckedAt, err = parseTimestamp(checkedAt)
		return item, err
	}, contexthelpers.AuthenticatedUserID(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "list grocery items")
	}
	return items, nil
}

// Toggle flips the checked state of the item with id. Checking stamps now, unchecking clears the stamp.
func (r *groceryRepository) Toggle(ctx context.Context, id string, now time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM grocery_items WHERE id = ?)`, id).
			Scan(&exists); err != nil {
			return errors.Wrap(err, "query grocery item", slog.String("id", id))
		}
		if !exists {
			return errors.Wrap(ErrNotFound, "unknown grocery item", slog.String("id", id))
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO grocery_checks (user_id, item_id, checked, checked_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (user_id, item_id) DO UPDATE SET checked    = 1 - checked,
                                             checked_at = IIF(checked = 0, excluded.checked_at, NULL)`,
			contexthelpers.AuthenticatedUserID(ctx), id, formatTimestamp(now)); err != nil {
			return errors.Wrap(err, "toggle grocery item", slog.String("id", id))
		}
		return nil
	})
}

// ResetAll unchecks every item of the authenticated user.
func (r *groceryRepository) ResetAll(ctx context.Context) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM grocery_checks WHERE user_id = ?`,
		contexthelpers.AuthenticatedUserID(ctx)); err != nil {
		return errors.Wrap(err, "reset grocery items")
	}
	return nil
}
