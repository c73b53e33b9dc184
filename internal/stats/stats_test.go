package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/model"
	"github.com/tartampluch/go-wedding/internal/stats"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name        string
		part, total float64
		wantPercent float64
	}{
		{"ZeroTotal", 150, 0, 0},
		{"ZeroBoth", 0, 0, 0},
		{"Half", 50, 100, 50},
		{"Overspend", 150, 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantPercent, stats.BudgetPercentage(tt.part, tt.total), 1e-9)
		})
	}

	assert.Equal(t, 0.0, stats.TaskCompletionPercentage(3, 0))
	assert.InDelta(t, 75.0, stats.TaskCompletionPercentage(3, 4), 1e-9)
	assert.InDelta(t, 200.0, stats.GuestConfirmationPercentage(4, 2), 1e-9, "not clamped")
}

func TestDashboard(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	hundred := 100.0

	guests := []model.Guest{
		{ID: 1, FullName: "A", Attendance: model.AttendanceYes, GuestCount: 2},
		{ID: 2, FullName: "B", Attendance: model.AttendanceNo, GuestCount: 1},
		{ID: 3, FullName: "C", Attendance: model.AttendanceMaybe, GuestCount: 1},
		{ID: 4, FullName: "D", Attendance: model.AttendanceYes, GuestCount: 1},
	}
	budget := model.BudgetData{
		TotalBudget: 1000,
		Categories:  []model.BudgetCategory{{Name: "Venue", ActualAmount: 400}, {Name: "Food", ActualAmount: 100}},
	}
	gifts := []model.Gift{
		{GuestName: "A", Category: model.GiftMoney, Amount: &hundred},
		{GuestName: "B", Category: model.GiftItem},
	}
	tasks := []model.WeddingTask{
		{Title: "done", IsCompleted: true},
		{Title: "late", DueDate: &yesterday},
		{Title: "open"},
	}
	messages := []model.Message{{IsRead: true}, {}, {}}

	d := stats.Dashboard(guests, budget, gifts, tasks, messages, now)

	assert.Equal(t, 4, d.TotalGuests)
	assert.Equal(t, 2, d.ConfirmedGuests)
	assert.Equal(t, 1, d.DeclinedGuests)
	assert.Equal(t, 1, d.PendingGuests)
	assert.Equal(t, 3, d.ConfirmedHeadcount)
	assert.Equal(t, 500.0, d.TotalSpent)
	assert.Equal(t, 500.0, d.RemainingBudget)
	assert.InDelta(t, 50.0, d.BudgetPercentage(), 1e-9)
	assert.Equal(t, 3, d.TotalTasks)
	assert.Equal(t, 1, d.CompletedTasks)
	assert.Equal(t, 1, d.OverdueTasks)
	assert.Equal(t, 2, d.TotalGifts)
	assert.Equal(t, 100.0, d.MoneyGiftsTotal)
	assert.Equal(t, 2, d.UnreadMessages)
	assert.InDelta(t, 50.0, d.GuestConfirmationPercentage(), 1e-9)
}

func TestDashboard_Empty(t *testing.T) {
	d := stats.Dashboard(nil, model.BudgetData{}, nil, nil, nil, time.Now())
	assert.Zero(t, d.BudgetPercentage())
	assert.Zero(t, d.TaskCompletionPercentage())
	assert.Zero(t, d.GuestConfirmationPercentage())
}

func TestSortTasks(t *testing.T) {
	d1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.Add(48 * time.Hour)

	in := []model.WeddingTask{
		{Title: "completed urgent", Priority: model.PriorityUrgent, IsCompleted: true},
		{Title: "low", Priority: model.PriorityLow},
		{Title: "high later", Priority: model.PriorityHigh, DueDate: &d2},
		{Title: "high undated", Priority: model.PriorityHigh},
		{Title: "high sooner", Priority: model.PriorityHigh, DueDate: &d1},
	}

	out := stats.SortTasks(in)
	require.Len(t, out, len(in))

	var titles []string
	for _, task := range out {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"high sooner", "high later", "high undated", "low", "completed urgent"}, titles)
	assert.Equal(t, "completed urgent", in[0].Title, "input must not be reordered")
}

func TestGuestFilters(t *testing.T) {
	guests := []model.Guest{
		{FullName: "zoe", Attendance: model.AttendanceYes, Group: "Family"},
		{FullName: "Adam", Attendance: model.AttendanceNo, Phone: "+33 6 12"},
		{FullName: "bob", Attendance: model.AttendanceYes},
	}

	assert.Len(t, stats.GuestsByAttendance(guests, model.AttendanceYes), 2)
	assert.Len(t, stats.SearchGuests(guests, "FAMILY"), 1)
	assert.Len(t, stats.SearchGuests(guests, "+33"), 1)
	assert.Len(t, stats.SearchGuests(guests, ""), 3)

	sorted := stats.SortGuestsByName(guests)
	assert.Equal(t, "Adam", sorted[0].FullName)
	assert.Equal(t, "bob", sorted[1].FullName)
	assert.Equal(t, "zoe", sorted[2].FullName)
}

func TestOverdueAndGiftFilters(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	tasks := []model.WeddingTask{{Title: "a", DueDate: &past}, {Title: "b"}}
	assert.Len(t, stats.OverdueTasks(tasks, now), 1)

	gifts := []model.Gift{{Category: model.GiftService}, {Category: model.GiftItem}, {Category: model.GiftService}}
	assert.Len(t, stats.GiftsByCategory(gifts, model.GiftService), 2)
}
