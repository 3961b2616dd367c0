package state

import (
	"context"
	"sync"

	"github.com/user/brainassist/internal/types"
)

const projectsKey = "projects"

// ProjectStore keeps saved projects newest first.
type ProjectStore struct {
	kv types.KV
	mu sync.Mutex
}

func NewProjectStore(kv types.KV) *ProjectStore {
	return &ProjectStore{kv: kv}
}

// List returns all projects. Returns an empty slice if none were saved.
func (s *ProjectStore) List(ctx context.Context) ([]types.Project, error) {
	return load(ctx, s.kv, projectsKey, []types.Project{})
}

// Get finds a project by ID.
func (s *ProjectStore) Get(ctx context.Context, id types.ProjectID) (types.Project, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return types.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Project{}, ErrNotFound
}

// Add prepends p and returns the new list.
func (s *ProjectStore) Add(ctx context.Context, p types.Project) ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	projects = append([]types.Project{p}, projects...)
	if err := save(ctx, s.kv, projectsKey, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete removes the project with id; the rest keep their order.
func (s *ProjectStore) Delete(ctx context.Context, id types.ProjectID) ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, p := range projects {
		if p.ID == id {
			projects = append(projects[:i], projects[i+1:]...)
			if err := save(ctx, s.kv, projectsKey, projects); err != nil {
				return nil, err
			}
			return projects, nil
		}
	}
	return projects, ErrNotFound
}
