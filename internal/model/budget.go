package model

import (
	"strings"
	"time"
)

// BudgetItem is a single expense inside a category.
type BudgetItem struct {
	ID     ClientID   `json:"id"`
	Name   string     `json:"name"`
	Amount float64    `json:"amount"`
	IsPaid bool       `json:"isPaid"`
	Notes  string     `json:"notes,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

// Validate checks name and amount.
func (i BudgetItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrNameRequired
	}
	if i.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// BudgetCategory groups expenses. ActualAmount is the sum of its item amounts,
// paid or not, whenever the category has items.
type BudgetCategory struct {
	ID            ClientID     `json:"id"`
	Name          string       `json:"name"`
	PlannedAmount float64      `json:"plannedAmount"`
	ActualAmount  float64      `json:"actualAmount"`
	Items         []BudgetItem `json:"items"`
}

// Validate checks the category and every item it holds.
func (c BudgetCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if c.PlannedAmount < 0 || c.ActualAmount < 0 {
		return ErrNegativeAmount
	}
	for _, it := range c.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ItemsTotal sums the amounts of all items.
func (c BudgetCategory) ItemsTotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Amount
	}
	return total
}

// PaidAmount sums the amounts of paid items.
func (c BudgetCategory) PaidAmount() float64 {
	var total float64
	for _, it := range c.Items {
		if it.IsPaid {
			total += it.Amount
		}
	}
	return total
}

// Remaining is the planned amount left after the actual spend. Negative when
// the category is over budget.
func (c BudgetCategory) Remaining() float64 {
	return c.PlannedAmount - c.ActualAmount
}

// Clone returns a copy that shares no slices with c.
func (c BudgetCategory) Clone() BudgetCategory {
	out := c
	if c.Items != nil {
		out.Items = make([]BudgetItem, len(c.Items))
		for i, it := range c.Items {
			out.Items[i] = it.clone()
		}
	}
	return out
}

// Recomputed returns a copy whose ActualAmount is derived from the items.
func (c BudgetCategory) Recomputed() BudgetCategory {
	out := c.Clone()
	out.ActualAmount = out.ItemsTotal()
	return out
}

func (i BudgetItem) clone() BudgetItem {
	out := i
	if i.Date != nil {
		d := *i.Date
		out.Date = &d
	}
	return out
}

// BudgetData is the whole budget as stored on the server. Spent and remaining
// totals are derived on read and never serialized.
type BudgetData struct {
	Categories  []BudgetCategory `json:"categories"`
	TotalBudget float64          `json:"totalBudget"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// TotalSpent sums the actual amount of every category.
func (b BudgetData) TotalSpent() float64 {
	var total float64
	for _, c := range b.Categories {
		total += c.ActualAmount
	}
	return total
}

// TotalPlanned sums the planned amount of every category.
func (b BudgetData) TotalPlanned() float64 {
	var total float64
	for _, c := range b.Categories {
		total += c.PlannedAmount
	}
	return total
}

// RemainingBudget may be negative; overspending is not an error.
func (b BudgetData) RemainingBudget() float64 {
	return b.TotalBudget - b.TotalSpent()
}

// Category looks up a category by id.
func (b BudgetData) Category(id ClientID) (BudgetCategory, bool) {
	for _, c := range b.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return BudgetCategory{}, false
}

// Clone returns a deep copy.
func (b BudgetData) Clone() BudgetData {
	out := b
	if b.Categories != nil {
		out.Categories = make([]BudgetCategory, len(b.Categories))
		for i, c := range b.Categories {
			out.Categories[i] = c.Clone()
		}
	}
	return out
}
