package tracker

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/habitapp/internal/errors"
)

// GroceryCategory is a run of catalog items sharing a category.
type GroceryCategory struct {
	Key     string
	Items   []GroceryItem
	Checked int
}

// GroceryList is the grocery checklist grouped by category in catalog order.
type GroceryList struct {
	Categories []GroceryCategory
	Checked    int
	Total      int
}

// Percentage is the share of checked items rounded down.
func (l GroceryList) Percentage() int {
	if l.Total == 0 {
		return 0
	}
	return l.Checked * 100 / l.Total //nolint:mnd // percent.
}

// Done reports whether every item is checked.
func (l GroceryList) Done() bool {
	return l.Total > 0 && l.Checked == l.Total
}

func (s *Service) Groceries(ctx context.Context) (GroceryList, error) {
	items, err := s.repo.groceries.List(ctx)
	if err != nil {
		return GroceryList{}, errors.Wrap(err, "load groceries")
	}
	var list GroceryList
	for _, item := range items {
		if n := len(list.Categories); n == 0 || list.Categories[n-1].Key != item.Category {
			list.Categories = append(list.Categories, GroceryCategory{Key: item.Category, Items: nil, Checked: 0})
		}
		c := &list.Categories[len(list.Categories)-1]
		c.Items = append(c.Items, item)
		list.Total++
		if item.Checked {
			c.Checked++
			list.Checked++
		}
	}
	return list, nil
}

func (s *Service) ToggleGroceryItem(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.Wrap(ErrInvalidInput, "empty grocery item")
	}
	if err := s.repo.groceries.Toggle(ctx, id, s.now()); err != nil {
		return errors.Wrap(err, "toggle grocery item", slog.String("id", id))
	}
	return nil
}

// ResetGroceries unchecks the whole list for a new shopping trip.
func (s *Service) ResetGroceries(ctx context.Context) error {
	if err := s.repo.groceries.ResetAll(ctx); err != nil {
		return errors.Wrap(err, "reset groceries")
	}
	return nil
}
