package engine

import (
	"time"

	"github.com/tartampluch/go-wedding/internal/model"
)

// DaysUntil counts calendar days from now to the due date in now's location.
// Past dates give a negative count, today gives 0.
func DaysUntil(now, due time.Time) int {
	loc := now.Location()
	d := due.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	// round to absorb DST shifts
	return int(day.Sub(today).Round(24*time.Hour) / (24 * time.Hour))
}

// NextDue returns the open task with the earliest due date that is today or
// later, and the number of days left.
func NextDue(tasks []model.WeddingTask, now time.Time) (model.WeddingTask, int, bool) {
	var (
		best  model.WeddingTask
		days  int
		found bool
	)
	for _, t := range tasks {
		if t.IsCompleted || t.DueDate == nil {
			continue
		}
		n := DaysUntil(now, *t.DueDate)
		if n < 0 {
			continue
		}
		if !found || n < days || (n == days && t.Priority.Rank() > best.Priority.Rank()) {
			best, days, found = t, n, true
		}
	}
	return best, days, found
}
