package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

func taskKey(t model.WeddingTask) model.ClientID { return t.ID }

// Tasks returns a copy of the task list.
func (s *Store) Tasks() []model.WeddingTask {
	return s.Snapshot().Tasks
}

// Task looks up a task by id.
func (s *Store) Task(id model.ClientID) (model.WeddingTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id, taskKey); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.WeddingTask{}, false
}

func (s *Store) loadTasks(ctx context.Context) error {
	data, err := s.backend.LoadTasks(ctx)
	return s.commit(config.OpLoadTasks, err, func() {
		now := s.now()
		tasks := make([]model.WeddingTask, 0, len(data.Tasks))
		for _, t := range data.Tasks {
			tasks = append(tasks, normalizedTask(t, now))
		}
		s.tasks = uniqueBy(tasks, taskKey)
		s.tasksUpdatedAt = data.UpdatedAt
		clear(s.reopened)
	})
}

// SaveTasks pushes the local task list to the server.
func (s *Store) SaveTasks(ctx context.Context) error {
	s.mu.Lock()
	data := model.TaskData{Tasks: s.snapshotLocked().Tasks, UpdatedAt: s.tasksUpdatedAt}
	s.mu.Unlock()
	if data.Tasks == nil {
		data.Tasks = []model.WeddingTask{}
	}

	if err := s.backend.SaveTasks(ctx, data); err != nil {
		return s.mutate(config.OpSaveTasks, func() error { return err })
	}
	return nil
}

// AddTask appends a task and returns its id. A task added as completed
// without a date is stamped now.
func (s *Store) AddTask(t model.WeddingTask) (model.ClientID, error) {
	var id model.ClientID
	err := s.mutate(config.OpAddTask, func() error {
		if err := t.Validate(); err != nil {
			return err
		}
		nt := normalizedTask(t, s.now())
		if indexOf(s.tasks, nt.ID, taskKey) >= 0 {
			return fmt.Errorf("%w: task %s", ErrDuplicateID, nt.ID)
		}
		s.tasks = appended(s.tasks, nt)
		s.tasksUpdatedAt = s.now()
		id = nt.ID
		return nil
	})
	return id, err
}

// UpdateTask replaces the task with the same id. A task that was already
// completed keeps its completion date unless the edit carries one.
func (s *Store) UpdateTask(t model.WeddingTask) error {
	return s.mutate(config.OpUpdateTask, func() error {
		if err := t.Validate(); err != nil {
			return err
		}
		i := indexOf(s.tasks, t.ID, taskKey)
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrNotFound, t.ID)
		}
		nt := t.Clone()
		if old := s.tasks[i]; nt.IsCompleted && nt.CompletedDate == nil && old.CompletedDate != nil {
			d := *old.CompletedDate
			nt.CompletedDate = &d
		}
		s.tasks = replaced(s.tasks, i, nt.Normalized(s.now()))
		delete(s.reopened, t.ID)
		s.tasksUpdatedAt = s.now()
		return nil
	})
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id model.ClientID) error {
	return s.mutate(config.OpDeleteTask, func() error {
		i := indexOf(s.tasks, id, taskKey)
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		s.tasks = removed(s.tasks, i)
		delete(s.reopened, id)
		s.tasksUpdatedAt = s.now()
		return nil
	})
}

// ToggleTaskCompletion flips a task between open and completed. Completing
// stamps the current time, except right after a reopen where the previous
// completion date is restored, so two toggles leave the task unchanged.
func (s *Store) ToggleTaskCompletion(id model.ClientID) error {
	return s.mutate(config.OpToggleTask, func() error {
		i := indexOf(s.tasks, id, taskKey)
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		t := s.tasks[i]
		now := s.now()

		var nt model.WeddingTask
		if t.IsCompleted {
			at := now
			if t.CompletedDate != nil {
				at = *t.CompletedDate
			}
			s.reopened[id] = at
			nt = t.WithCompletion(false, now)
		} else {
			at, ok := s.reopened[id]
			if !ok {
				at = now
			}
			delete(s.reopened, id)
			nt = t.WithCompletion(true, at)
		}
		s.tasks = replaced(s.tasks, i, nt)
		s.tasksUpdatedAt = now
		return nil
	})
}

func normalizedTask(t model.WeddingTask, now time.Time) model.WeddingTask {
	t = t.Normalized(now)
	if t.ID.IsZero() {
		t.ID = model.NewClientID()
	}
	return t
}
