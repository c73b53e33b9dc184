package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/tartampluch/go-wedding/internal/model"
)

// GuestsByAttendance returns the guests with the given answer, in input order.
func GuestsByAttendance(guests []model.Guest, a model.Attendance) []model.Guest {
	var out []model.Guest
	for _, g := range guests {
		if g.Attendance == a {
			out = append(out, g)
		}
	}
	return out
}

// SearchGuests matches the query case-insensitively against name, phone and group.
// An empty query returns a copy of all guests.
func SearchGuests(guests []model.Guest, query string) []model.Guest {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Guest, 0, len(guests))
	for _, g := range guests {
		if q == "" ||
			strings.Contains(strings.ToLower(g.FullName), q) ||
			strings.Contains(g.Phone, q) ||
			strings.Contains(strings.ToLower(g.Group), q) {
			out = append(out, g)
		}
	}
	return out
}

// SortGuestsByName returns a copy ordered case-insensitively by name.
func SortGuestsByName(guests []model.Guest) []model.Guest {
	out := append([]model.Guest(nil), guests...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	return out
}

// SortTasks returns a copy with open tasks first, then by priority (highest
// first), then by due date (earliest first, undated last), then by title.
func SortTasks(tasks []model.WeddingTask) []model.WeddingTask {
	out := append([]model.WeddingTask(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		}
		return a.Title < b.Title
	})
	return out
}

// OverdueTasks returns the open tasks whose due date has passed.
func OverdueTasks(tasks []model.WeddingTask, now time.Time) []model.WeddingTask {
	var out []model.WeddingTask
	for _, t := range tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

// GiftsByCategory returns the gifts of one category.
func GiftsByCategory(gifts []model.Gift, c model.GiftCategory) []model.Gift {
	var out []model.Gift
	for _, g := range gifts {
		if g.Category == c {
			out = append(out, g)
		}
	}
	return out
}
