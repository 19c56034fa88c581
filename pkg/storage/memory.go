package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/types"
)

// MemoryStore is an in-process Store backed by plain maps, guarded by one
// mutex. It exists for unit tests across packages and for running the
// coordinator without a Postgres instance during local development.
type MemoryStore struct {
	mu sync.Mutex

	taskServices map[string]*types.TaskService
	releases     map[string]*types.Release
	tasks        map[string]*types.Task
	events       []*types.Event
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		taskServices: make(map[string]*types.TaskService),
		releases:     make(map[string]*types.Release),
		tasks:        make(map[string]*types.Task),
	}
}

func clone[T any](v *T) *T {
	cp := *v
	return &cp
}

// Task Services

func (m *MemoryStore) CreateTaskService(ctx context.Context, s *types.TaskService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskServices[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) GetTaskService(ctx context.Context, id string) (*types.TaskService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.taskServices[id]
	if !ok {
		return nil, cerrors.NotFound("task_service", id)
	}
	return clone(s), nil
}

func (m *MemoryStore) ListTaskServices(ctx context.Context) ([]*types.TaskService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.TaskService, 0, len(m.taskServices))
	for _, s := range m.taskServices {
		out = append(out, clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListEnabledTaskServices(ctx context.Context) ([]*types.TaskService, error) {
	all, _ := m.ListTaskServices(ctx)
	out := all[:0:0]
	for _, s := range all {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateTaskService(ctx context.Context, s *types.TaskService) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taskServices[s.ID]; !ok {
		return cerrors.NotFound("task_service", s.ID)
	}
	m.taskServices[s.ID] = clone(s)
	return nil
}

func (m *MemoryStore) DeleteTaskService(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taskServices[id]; !ok {
		return cerrors.NotFound("task_service", id)
	}
	delete(m.taskServices, id)
	return nil
}

// Releases

func (m *MemoryStore) CreateRelease(ctx context.Context, r *types.Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases[r.ID] = clone(r)
	return nil
}

func (m *MemoryStore) GetRelease(ctx context.Context, id string) (*types.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.releases[id]
	if !ok {
		return nil, cerrors.NotFound("release", id)
	}
	return clone(r), nil
}

func (m *MemoryStore) ListReleases(ctx context.Context) ([]*types.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Release, 0, len(m.releases))
	for _, r := range m.releases {
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateRelease(ctx context.Context, r *types.Release) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.releases[r.ID]; !ok {
		return cerrors.NotFound("release", r.ID)
	}
	m.releases[r.ID] = clone(r)
	return nil
}

// Tasks

func (m *MemoryStore) CreateTask(ctx context.Context, t *types.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = clone(t)
	return nil
}

func (m *MemoryStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, cerrors.NotFound("task", id)
	}
	return clone(t), nil
}

func (m *MemoryStore) ListTasksByRelease(ctx context.Context, releaseID string) ([]*types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Task
	for _, t := range m.tasks {
		if t.ReleaseID == releaseID {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListTasksByTaskService(ctx context.Context, taskServiceID string) ([]*types.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Task
	for _, t := range m.tasks {
		if t.TaskServiceID == taskServiceID {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) UpdateTask(ctx context.Context, t *types.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return cerrors.NotFound("task", t.ID)
	}
	m.tasks[t.ID] = clone(t)
	return nil
}

// Events

func (m *MemoryStore) CreateEvent(ctx context.Context, e *types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, clone(e))
	return nil
}

func (m *MemoryStore) ListEventsByRelease(ctx context.Context, releaseID string) ([]*types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Event
	for _, e := range m.events {
		if e.ReleaseID != nil && *e.ReleaseID == releaseID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (m *MemoryStore) ListEventsByTask(ctx context.Context, taskID string) ([]*types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Event
	for _, e := range m.events {
		if e.TaskID != nil && *e.TaskID == taskID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

// Atomic has no real transaction to offer in-memory; each Store method
// already takes the lock for its own single mutation, so fn just runs
// straight through. Good enough for tests, where callers don't depend on
// cross-call isolation.
func (m *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error { return nil }
