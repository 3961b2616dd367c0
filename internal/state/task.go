// internal/state/task.go
package state

import (
	"context"
	"sync"

	"github.com/user/brainassist/internal/types"
)

const (
	tasksKey     = "tasks"
	timetableKey = "timetable"
)

// PlanningStore holds the to-do list and the weekly timetable.
type PlanningStore struct {
	kv types.KV
	mu sync.Mutex
}

func NewPlanningStore(kv types.KV) *PlanningStore {
	return &PlanningStore{kv: kv}
}

// Tasks returns all tasks. Returns an empty slice if none were saved.
func (s *PlanningStore) Tasks(ctx context.Context) ([]types.Task, error) {
	return load(ctx, s.kv, tasksKey, []types.Task{})
}

// AddTask appends a task and returns the new list.
func (s *PlanningStore) AddTask(ctx context.Context, task types.Task) ([]types.Task, error) {
	return s.mutate(ctx, func(tasks []types.Task) ([]types.Task, error) {
		return append(tasks, task), nil
	})
}

// ToggleTask flips the completed flag. Returns ErrNotFound for an unknown id.
func (s *PlanningStore) ToggleTask(ctx context.Context, id types.TaskID) ([]types.Task, error) {
	return s.mutate(ctx, func(tasks []types.Task) ([]types.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].IsCompleted = !tasks[i].IsCompleted
				return tasks, nil
			}
		}
		return nil, ErrNotFound
	})
}

// RemoveTask deletes a task by id. Returns ErrNotFound for an unknown id.
func (s *PlanningStore) RemoveTask(ctx context.Context, id types.TaskID) ([]types.Task, error) {
	return s.mutate(ctx, func(tasks []types.Task) ([]types.Task, error) {
		for i := range tasks {
			if tasks[i].ID == id {
				return append(tasks[:i], tasks[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

func (s *PlanningStore) mutate(ctx context.Context, fn func([]types.Task) ([]types.Task, error)) ([]types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err = fn(tasks)
	if err != nil {
		return nil, err
	}
	if err := save(ctx, s.kv, tasksKey, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Timetable returns the stored timetable, empty if none.
func (s *PlanningStore) Timetable(ctx context.Context) (types.Timetable, error) {
	return load(ctx, s.kv, timetableKey, types.Timetable{})
}

func (s *PlanningStore) SetTimetable(ctx context.Context, tt types.Timetable) error {
	return save(ctx, s.kv, timetableKey, tt)
}
