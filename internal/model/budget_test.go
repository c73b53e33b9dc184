package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/model"
)

// TestBudgetData_RoundTrip verifies that a budget survives JSON encoding
// field-for-field and that derived totals are not part of the payload.
func TestBudgetData_RoundTrip(t *testing.T) {
	in := model.BudgetData{
		Categories: []model.BudgetCategory{{
			ID:            "cat-venue",
			Name:          "Venue",
			PlannedAmount: 1000,
			ActualAmount:  400,
			Items: []model.BudgetItem{
				{ID: "item-deposit", Name: "Deposit", Amount: 400, IsPaid: true},
			},
		}},
		TotalBudget: 5000,
		UpdatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "totalSpent")
	assert.NotContains(t, fields, "remainingBudget")

	var out model.BudgetData
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, in.Categories, out.Categories)
	assert.Equal(t, in.TotalBudget, out.TotalBudget)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
	assert.Equal(t, 400.0, out.TotalSpent())
	assert.Equal(t, 4600.0, out.RemainingBudget())
}

func TestBudgetData_Overspend(t *testing.T) {
	b := model.BudgetData{
		TotalBudget: 100,
		Categories:  []model.BudgetCategory{{Name: "Catering", ActualAmount: 150}},
	}
	assert.Equal(t, -50.0, b.RemainingBudget(), "overspend is representable")
}

func TestBudgetCategory_Recomputed(t *testing.T) {
	c := model.BudgetCategory{
		Name:         "Flowers",
		ActualAmount: 999, // stale
		Items: []model.BudgetItem{
			{Name: "Bouquet", Amount: 120, IsPaid: true},
			{Name: "Arch", Amount: 300},
		},
	}

	got := c.Recomputed()

	assert.Equal(t, 420.0, got.ActualAmount)
	assert.Equal(t, 120.0, got.PaidAmount())
	assert.Equal(t, 999.0, c.ActualAmount, "receiver must not be modified")

	got.Items[0].Name = "changed"
	assert.Equal(t, "Bouquet", c.Items[0].Name, "recomputed copy must not alias items")
}

func TestBudgetCategory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cat     model.BudgetCategory
		wantErr error
	}{
		{"Valid", model.BudgetCategory{Name: "Music", PlannedAmount: 10}, nil},
		{"MissingName", model.BudgetCategory{Name: "  "}, model.ErrNameRequired},
		{"NegativePlanned", model.BudgetCategory{Name: "Music", PlannedAmount: -1}, model.ErrNegativeAmount},
		{"NegativeItem", model.BudgetCategory{Name: "Music", Items: []model.BudgetItem{{Name: "DJ", Amount: -5}}}, model.ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cat.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
