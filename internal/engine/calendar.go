package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

// TaskCalendar renders the open tasks of the planner as an iCalendar feed,
// one all-day event per task that has a due date.
type TaskCalendar struct {
	Clock Clock

	// ReminderTrigger is an ISO8601 duration such as "-P1D". Empty disables alarms.
	ReminderTrigger string

	// FormatSummary lets the UI inject a localized event title.
	FormatSummary func(t model.WeddingTask) string
}

// NewTaskCalendar returns a calendar with the default one-day reminder.
func NewTaskCalendar(clock Clock) *TaskCalendar {
	return &TaskCalendar{Clock: clock, ReminderTrigger: config.DefaultReminderTrigger}
}

// Generate encodes the feed and reports how many open tasks are due today.
// Completed and undated tasks are left out. A list with no eligible task
// still yields a valid, empty VCALENDAR.
func (c *TaskCalendar) Generate(tasks []model.WeddingTask) ([]byte, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	// Due dates are calendar days of the couple, so "today" is local.
	now := c.Clock.Now()
	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())

	dueToday := 0
	for _, t := range tasks {
		if t.IsCompleted || t.DueDate == nil {
			continue
		}
		event := c.taskEvent(t, now.Location())
		event.Props.Set(stamp)
		cal.Children = append(cal.Children, event.Component)

		if sameDay(t.DueDate.In(now.Location()), now) {
			dueToday++
		}
	}

	log := slog.With(config.LogKeyComponent, config.CompCalendar)
	if len(cal.Children) == 0 {
		log.Info(config.MsgFeedGenerated, config.LogKeyTotal, 0)
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	log.Info(config.MsgFeedGenerated,
		config.LogKeyTotal, len(cal.Children),
		config.LogKeyToday, dueToday)
	return buf.Bytes(), dueToday, nil
}

func (c *TaskCalendar) taskEvent(t model.WeddingTask, loc *time.Location) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, t.ID, config.ICalDomain))

	summary := t.Title
	if c.FormatSummary != nil {
		summary = c.FormatSummary(t)
	}
	event.Props.SetText(config.PropSummary, summary)
	if t.Description != "" {
		event.Props.SetText(config.PropDescription, t.Description)
	}
	if t.Category != "" {
		event.Props.SetText(config.PropCategories, t.Category)
	}

	priority := ical.NewProp(config.PropPriority)
	priority.Value = fmt.Sprint(icalPriority(t.Priority))
	event.Props.Set(priority)

	due := t.DueDate.In(loc)
	start := ical.NewProp(config.PropDTStart)
	start.SetDate(time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc))
	event.Props.Set(start)

	if c.ReminderTrigger != "" {
		addAlarm(event, c.ReminderTrigger, summary)
	}
	return event
}

// icalPriority maps task priorities onto RFC 5545 PRIORITY, where 1 is the highest.
func icalPriority(p model.Priority) int {
	switch p {
	case model.PriorityUrgent:
		return 1
	case model.PriorityHigh:
		return 3
	case model.PriorityLow:
		return 9
	default:
		return 5
	}
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// set by hand, SetText would add VALUE=TEXT
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
