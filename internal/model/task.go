package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders tasks from least to most pressing.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank maps the priority to a sortable number; unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WeddingTask is a to-do entry. CompletedDate is set if and only if
// IsCompleted is true.
type WeddingTask struct {
	ID            ClientID   `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	IsCompleted   bool       `json:"isCompleted"`
	Priority      Priority   `json:"priority"`
	Category      string     `json:"category"`
	AssignedTo    string     `json:"assignedTo,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

// Validate checks title and priority.
func (t WeddingTask) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	return nil
}

// Clone returns a copy that shares no pointers with t.
func (t WeddingTask) Clone() WeddingTask {
	out := t
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.CompletedDate != nil {
		d := *t.CompletedDate
		out.CompletedDate = &d
	}
	return out
}

// WithCompletion returns a copy marked completed at the given time, or
// reopened when completed is false.
func (t WeddingTask) WithCompletion(completed bool, at time.Time) WeddingTask {
	out := t.Clone()
	out.IsCompleted = completed
	if completed {
		out.CompletedDate = &at
	} else {
		out.CompletedDate = nil
	}
	return out
}

// Normalized repairs the completion invariant of data received from elsewhere.
func (t WeddingTask) Normalized(now time.Time) WeddingTask {
	out := t.Clone()
	switch {
	case out.IsCompleted && out.CompletedDate == nil:
		out.CompletedDate = &now
	case !out.IsCompleted:
		out.CompletedDate = nil
	}
	return out
}

// IsOverdue reports whether an open task is past its due date.
func (t WeddingTask) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskData is the task list as stored on the server.
type TaskData struct {
	Tasks     []WeddingTask `json:"tasks"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
