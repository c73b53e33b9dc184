package store

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

func categoryKey(c model.BudgetCategory) model.ClientID { return c.ID }
func itemKey(i model.BudgetItem) model.ClientID         { return i.ID }

// Budget returns a copy of the budget.
func (s *Store) Budget() model.BudgetData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget.Clone()
}

func (s *Store) loadBudget(ctx context.Context) error {
	data, err := s.backend.LoadBudget(ctx)
	return s.commit(config.OpLoadBudget, err, func() {
		s.budget = normalizedBudget(data)
	})
}

// SaveBudget pushes the local budget to the server. A failure keeps the
// local edits.
func (s *Store) SaveBudget(ctx context.Context) error {
	data := s.Budget()
	err := s.backend.SaveBudget(ctx, data)
	if err != nil {
		return s.mutate(config.OpSaveBudget, func() error { return err })
	}
	return nil
}

// SetTotalBudget changes the overall envelope.
func (s *Store) SetTotalBudget(amount float64) error {
	return s.mutate(config.OpSetTotalBudget, func() error {
		if amount < 0 {
			return model.ErrNegativeAmount
		}
		s.budget.TotalBudget = amount
		s.budget.UpdatedAt = s.now()
		return nil
	})
}

// AddBudgetCategory appends a category. An empty id is replaced by a fresh
// one, which is returned.
func (s *Store) AddBudgetCategory(c model.BudgetCategory) (model.ClientID, error) {
	c = normalizedCategory(c)
	err := s.mutate(config.OpAddCategory, func() error {
		if err := c.Validate(); err != nil {
			return err
		}
		if err := checkItemIDs(c.Items); err != nil {
			return err
		}
		if indexOf(s.budget.Categories, c.ID, categoryKey) >= 0 {
			return fmt.Errorf("%w: category %s", ErrDuplicateID, c.ID)
		}
		s.budget.Categories = appended(s.budget.Categories, c)
		s.budget.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// UpdateBudgetCategory replaces the category with the same id. Items
// without an id get a fresh one.
func (s *Store) UpdateBudgetCategory(c model.BudgetCategory) error {
	return s.mutate(config.OpUpdateCategory, func() error {
		i := indexOf(s.budget.Categories, c.ID, categoryKey)
		if c.ID.IsZero() || i < 0 {
			return fmt.Errorf("%w: category %s", ErrNotFound, c.ID)
		}
		c = normalizedCategory(c)
		if err := c.Validate(); err != nil {
			return err
		}
		if err := checkItemIDs(c.Items); err != nil {
			return err
		}
		s.budget.Categories = replaced(s.budget.Categories, i, c)
		s.budget.UpdatedAt = s.now()
		return nil
	})
}

// DeleteBudgetCategory removes a category and its items.
func (s *Store) DeleteBudgetCategory(id model.ClientID) error {
	return s.mutate(config.OpDeleteCategory, func() error {
		i := indexOf(s.budget.Categories, id, categoryKey)
		if i < 0 {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		s.budget.Categories = removed(s.budget.Categories, i)
		s.budget.UpdatedAt = s.now()
		return nil
	})
}

// AddBudgetItem appends an expense line to a category and returns its id.
func (s *Store) AddBudgetItem(categoryID model.ClientID, item model.BudgetItem) (model.ClientID, error) {
	if item.ID.IsZero() {
		item.ID = model.NewClientID()
	}
	err := s.editItems(config.OpAddItem, categoryID, func(items []model.BudgetItem) ([]model.BudgetItem, error) {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if indexOf(items, item.ID, itemKey) >= 0 {
			return nil, fmt.Errorf("%w: item %s", ErrDuplicateID, item.ID)
		}
		return appended(items, item), nil
	})
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// UpdateBudgetItem replaces the item with the same id.
func (s *Store) UpdateBudgetItem(categoryID model.ClientID, item model.BudgetItem) error {
	return s.editItems(config.OpUpdateItem, categoryID, func(items []model.BudgetItem) ([]model.BudgetItem, error) {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		i := indexOf(items, item.ID, itemKey)
		if i < 0 {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, item.ID)
		}
		return replaced(items, i, item), nil
	})
}

// RemoveBudgetItem deletes an item from a category.
func (s *Store) RemoveBudgetItem(categoryID, id model.ClientID) error {
	return s.editItems(config.OpRemoveItem, categoryID, func(items []model.BudgetItem) ([]model.BudgetItem, error) {
		i := indexOf(items, id, itemKey)
		if i < 0 {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		return removed(items, i), nil
	})
}

// ToggleBudgetItemPaid flips the paid flag of an item.
func (s *Store) ToggleBudgetItemPaid(categoryID, id model.ClientID) error {
	return s.editItems(config.OpTogglePaid, categoryID, func(items []model.BudgetItem) ([]model.BudgetItem, error) {
		i := indexOf(items, id, itemKey)
		if i < 0 {
			return nil, fmt.Errorf("%w: item %s", ErrNotFound, id)
		}
		it := items[i]
		it.IsPaid = !it.IsPaid
		return replaced(items, i, it), nil
	})
}

// editItems rewrites the items of one category and recomputes its actual
// amount from them.
func (s *Store) editItems(op string, categoryID model.ClientID, edit func([]model.BudgetItem) ([]model.BudgetItem, error)) error {
	return s.mutate(op, func() error {
		ci := indexOf(s.budget.Categories, categoryID, categoryKey)
		if ci < 0 {
			return fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
		}
		c := s.budget.Categories[ci].Clone()
		items, err := edit(c.Items)
		if err != nil {
			return err
		}
		c.Items = items
		s.budget.Categories = replaced(s.budget.Categories, ci, c.Recomputed())
		s.budget.UpdatedAt = s.now()
		return nil
	})
}

// normalizedCategory assigns missing ids and derives the actual amount when
// the category itemizes its expenses.
func normalizedCategory(c model.BudgetCategory) model.BudgetCategory {
	c = c.Clone()
	if c.ID.IsZero() {
		c.ID = model.NewClientID()
	}
	for i := range c.Items {
		if c.Items[i].ID.IsZero() {
			c.Items[i].ID = model.NewClientID()
		}
	}
	if len(c.Items) > 0 {
		c = c.Recomputed()
	}
	return c
}

// checkItemIDs rejects a category whose items share an id.
func checkItemIDs(items []model.BudgetItem) error {
	seen := make(map[model.ClientID]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			return fmt.Errorf("%w: item %s", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// normalizedBudget prepares a budget received from the server: missing ids
// are assigned, and only the first category or item carrying a given id is
// kept.
func normalizedBudget(b model.BudgetData) model.BudgetData {
	out := b
	cats := make([]model.BudgetCategory, 0, len(b.Categories))
	for _, c := range b.Categories {
		c = normalizedCategory(c)
		if len(c.Items) > 0 {
			c.Items = uniqueBy(c.Items, itemKey)
			c = c.Recomputed()
		}
		cats = append(cats, c)
	}
	out.Categories = uniqueBy(cats, categoryKey)
	return out
}
