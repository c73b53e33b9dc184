// Package stats derives read-only figures from the planner collections.
// Every function is pure: inputs are never modified and results are
// recomputed on each call.
package stats

import (
	"time"

	"github.com/tartampluch/go-wedding/internal/model"
)

// Percentage returns part/total*100, or 0 when total is 0. The result is not
// clamped, so over-completion and overspend show up above 100.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// BudgetPercentage is the share of the total budget already spent.
func BudgetPercentage(spent, total float64) float64 {
	return Percentage(spent, total)
}

// TaskCompletionPercentage is the share of completed tasks.
func TaskCompletionPercentage(completed, total int) float64 {
	return Percentage(float64(completed), float64(total))
}

// GuestConfirmationPercentage is the share of guests who answered yes.
func GuestConfirmationPercentage(confirmed, total int) float64 {
	return Percentage(float64(confirmed), float64(total))
}

// DashboardStats summarizes every collection for the overview screen.
type DashboardStats struct {
	TotalGuests        int
	ConfirmedGuests    int
	DeclinedGuests     int
	PendingGuests      int
	ConfirmedHeadcount int

	TotalBudget     float64
	TotalSpent      float64
	RemainingBudget float64

	TotalTasks     int
	CompletedTasks int
	OverdueTasks   int

	TotalGifts      int
	MoneyGiftsTotal float64

	UnreadMessages int
}

// BudgetPercentage of the dashboard's budget figures.
func (d DashboardStats) BudgetPercentage() float64 {
	return BudgetPercentage(d.TotalSpent, d.TotalBudget)
}

// TaskCompletionPercentage of the dashboard's task figures.
func (d DashboardStats) TaskCompletionPercentage() float64 {
	return TaskCompletionPercentage(d.CompletedTasks, d.TotalTasks)
}

// GuestConfirmationPercentage of the dashboard's guest figures.
func (d DashboardStats) GuestConfirmationPercentage() float64 {
	return GuestConfirmationPercentage(d.ConfirmedGuests, d.TotalGuests)
}

// Dashboard computes the summary from the current collections. now is only
// used to decide which tasks are overdue.
func Dashboard(guests []model.Guest, budget model.BudgetData, gifts []model.Gift, tasks []model.WeddingTask, messages []model.Message, now time.Time) DashboardStats {
	d := DashboardStats{
		TotalGuests:     len(guests),
		TotalBudget:     budget.TotalBudget,
		TotalSpent:      budget.TotalSpent(),
		RemainingBudget: budget.RemainingBudget(),
		TotalTasks:      len(tasks),
		TotalGifts:      len(gifts),
		MoneyGiftsTotal: MoneyTotal(gifts),
		UnreadMessages:  UnreadCount(messages),
	}

	for _, g := range guests {
		switch g.Attendance {
		case model.AttendanceYes:
			d.ConfirmedGuests++
			d.ConfirmedHeadcount += g.Headcount()
		case model.AttendanceNo:
			d.DeclinedGuests++
		default:
			d.PendingGuests++
		}
	}

	for _, t := range tasks {
		if t.IsCompleted {
			d.CompletedTasks++
		}
		if t.IsOverdue(now) {
			d.OverdueTasks++
		}
	}

	return d
}

// MoneyTotal sums the amounts of money gifts.
func MoneyTotal(gifts []model.Gift) float64 {
	var total float64
	for _, g := range gifts {
		total += g.MoneyValue()
	}
	return total
}

// UnreadCount counts messages not yet read.
func UnreadCount(messages []model.Message) int {
	n := 0
	for _, m := range messages {
		if !m.IsRead {
			n++
		}
	}
	return n
}
