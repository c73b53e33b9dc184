package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/engine"
	"github.com/tartampluch/go-wedding/internal/model"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestGenerate_OpenTasksOnly(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: now})

	tasks := []model.WeddingTask{
		{ID: "a", Title: "Book DJ", Priority: model.PriorityHigh, DueDate: day(2026, 6, 1), Category: "music"},
		{ID: "b", Title: "Order cake", Priority: model.PriorityLow, DueDate: day(2026, 7, 1)},
		{ID: "c", Title: "Venue", Priority: model.PriorityHigh, DueDate: day(2026, 5, 1), IsCompleted: true, CompletedDate: day(2026, 5, 1)},
		{ID: "d", Title: "Someday", Priority: model.PriorityMedium},
	}

	ics, today, err := cal.Generate(tasks)
	require.NoError(t, err)

	out := string(ics)
	assert.Equal(t, 1, today)
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "SUMMARY:Book DJ")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260601")
	assert.Contains(t, out, "CATEGORIES:music")
	assert.Contains(t, out, "PRIORITY:3")
	assert.Contains(t, out, "PRIORITY:9")
	assert.NotContains(t, out, "Venue")
	assert.NotContains(t, out, "Someday")
}

func TestGenerate_Reminders(t *testing.T) {
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)})

	ics, _, err := cal.Generate([]model.WeddingTask{
		{ID: "a", Title: "Fitting", Priority: model.PriorityMedium, DueDate: day(2026, 6, 10)},
	})
	require.NoError(t, err)

	out := string(ics)
	assert.Contains(t, out, "BEGIN:VALARM")
	assert.Contains(t, out, "TRIGGER:-P1D")
	assert.Contains(t, out, "ACTION:DISPLAY")
}

func TestGenerate_NoReminderWhenDisabled(t *testing.T) {
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)})
	cal.ReminderTrigger = ""

	ics, _, err := cal.Generate([]model.WeddingTask{
		{ID: "a", Title: "Fitting", Priority: model.PriorityMedium, DueDate: day(2026, 6, 10)},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(ics), "VALARM")
}

func TestGenerate_StableUID(t *testing.T) {
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)})
	tasks := []model.WeddingTask{{ID: "task-42", Title: "Rings", Priority: model.PriorityUrgent, DueDate: day(2026, 8, 1)}}

	first, _, err := cal.Generate(tasks)
	require.NoError(t, err)
	second, _, err := cal.Generate(tasks)
	require.NoError(t, err)

	assert.Contains(t, string(first), "UID:task-42@"+config.ICalDomain)
	assert.Equal(t, first, second)
}

func TestGenerate_LocalizedSummary(t *testing.T) {
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)})
	cal.FormatSummary = func(t model.WeddingTask) string { return "À faire : " + t.Title }

	ics, _, err := cal.Generate([]model.WeddingTask{{ID: "a", Title: "Fleurs", Priority: model.PriorityLow, DueDate: day(2026, 6, 2)}})
	require.NoError(t, err)
	assert.Contains(t, string(ics), "À faire : Fleurs")
}

func TestGenerate_EmptyIsValidCalendar(t *testing.T) {
	cal := engine.NewTaskCalendar(MockClock{CurrentTime: time.Now()})

	ics, today, err := cal.Generate(nil)

	require.NoError(t, err)
	assert.Equal(t, 0, today)
	assert.Contains(t, string(ics), "BEGIN:VCALENDAR")
	assert.Contains(t, string(ics), "END:VCALENDAR")
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 3, 28, 22, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"SameDay", time.Date(2026, 3, 28, 1, 0, 0, 0, time.UTC), 0},
		{"Tomorrow", time.Date(2026, 3, 29, 0, 0, 0, 0, time.UTC), 1},
		{"Yesterday", time.Date(2026, 3, 27, 23, 59, 0, 0, time.UTC), -1},
		{"NextMonth", time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DaysUntil(now, tt.due))
		})
	}
}

func TestDaysUntil_AcrossDST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2026, 3, 28, 12, 0, 0, 0, paris)
	due := time.Date(2026, 3, 30, 0, 0, 0, 0, paris)

	assert.Equal(t, 2, engine.DaysUntil(now, due))
}

func TestNextDue(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.WeddingTask{
		{ID: "late", Title: "Late", Priority: model.PriorityUrgent, DueDate: day(2026, 5, 30)},
		{ID: "low", Title: "Low", Priority: model.PriorityLow, DueDate: day(2026, 6, 3)},
		{ID: "high", Title: "High", Priority: model.PriorityHigh, DueDate: day(2026, 6, 3)},
		{ID: "done", Title: "Done", Priority: model.PriorityHigh, DueDate: day(2026, 6, 2), IsCompleted: true, CompletedDate: day(2026, 5, 1)},
	}

	next, days, ok := engine.NextDue(tasks, now)

	require.True(t, ok)
	assert.Equal(t, model.ClientID("high"), next.ID)
	assert.Equal(t, 2, days)

	_, _, ok = engine.NextDue(nil, now)
	assert.False(t, ok)
}
