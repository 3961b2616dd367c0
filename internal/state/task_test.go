// internal/state/task_test.go
package state

import (
	"context"
	"errors"
	"testing"

	"github.com/user/brainassist/internal/types"
)

func TestPlanningStore_ListEmpty(t *testing.T) {
	store := NewPlanningStore(NewFileKV(t.TempDir()))

	tasks, err := store.Tasks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty list, got %d tasks", len(tasks))
	}
}

func TestPlanningStore_AddAndList(t *testing.T) {
	store := NewPlanningStore(NewFileKV(t.TempDir()))
	ctx := context.Background()

	task := types.Task{
		ID:       "t1",
		Title:    "Réviser la chimie",
		Comment:  "chapitre 4",
		DueDate:  "2026-03-10",
		Priority: types.PriorityHigh,
	}
	if _, err := store.AddTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddTask(ctx, types.Task{ID: "t2", Title: "Exposé", Priority: types.PriorityLow}); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.Tasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "Réviser la chimie" {
		t.Errorf("expected insertion order, got %s first", tasks[0].Title)
	}
	if tasks[0].Priority != types.PriorityHigh {
		t.Errorf("expected priority high, got %s", tasks[0].Priority)
	}
	if tasks[0].DueDate != "2026-03-10" || tasks[0].Comment != "chapitre 4" {
		t.Errorf("unexpected fields %+v", tasks[0])
	}
}

func TestPlanningStore_Toggle(t *testing.T) {
	store := NewPlanningStore(NewFileKV(t.TempDir()))
	ctx := context.Background()
	store.AddTask(ctx, types.Task{ID: "t1", Title: "a"})

	tasks, err := store.ToggleTask(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !tasks[0].IsCompleted {
		t.Error("expected task to be completed")
	}
	tasks, _ = store.ToggleTask(ctx, "t1")
	if tasks[0].IsCompleted {
		t.Error("expected task to be reopened")
	}

	if _, err := store.ToggleTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanningStore_Remove(t *testing.T) {
	store := NewPlanningStore(NewFileKV(t.TempDir()))
	ctx := context.Background()
	for _, id := range []types.TaskID{"t1", "t2", "t3"} {
		store.AddTask(ctx, types.Task{ID: id, Title: string(id)})
	}

	tasks, err := store.RemoveTask(ctx, "t2")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t3" {
		t.Errorf("unexpected tasks after remove: %+v", tasks)
	}

	if _, err := store.RemoveTask(ctx, "t2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	persisted, _ := store.Tasks(ctx)
	if len(persisted) != 2 {
		t.Errorf("expected failed remove to leave 2 tasks, got %d", len(persisted))
	}
}

func TestPlanningStore_Timetable(t *testing.T) {
	store := NewPlanningStore(NewFileKV(t.TempDir()))
	ctx := context.Background()

	tt, err := store.Timetable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tt.Content != "" {
		t.Errorf("expected empty timetable, got %q", tt.Content)
	}

	if err := store.SetTimetable(ctx, types.Timetable{Content: "Lundi: Maths"}); err != nil {
		t.Fatal(err)
	}
	tt, _ = store.Timetable(ctx)
	if tt.Content != "Lundi: Maths" {
		t.Errorf("expected saved timetable, got %q", tt.Content)
	}
}
