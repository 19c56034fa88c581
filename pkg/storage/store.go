// Package storage defines the persistence boundary for the coordinator.
// Store is implemented by a Postgres-backed adapter for production and an
// in-memory adapter for tests, mirroring the interface-first storage split
// warren uses for its own Store/BoltStore pair.
package storage

import (
	"context"

	"github.com/cuemby/coordinator/pkg/types"
)

// Store is the full persistence contract the orchestration packages depend
// on. Every mutating method is expected to be atomic with respect to a
// single entity; multi-entity invariants (e.g. "all tasks of a release are
// terminal") are enforced by callers, not by Store itself.
type Store interface {
	// Task Services
	CreateTaskService(ctx context.Context, s *types.TaskService) error
	GetTaskService(ctx context.Context, id string) (*types.TaskService, error)
	ListTaskServices(ctx context.Context) ([]*types.TaskService, error)
	ListEnabledTaskServices(ctx context.Context) ([]*types.TaskService, error)
	UpdateTaskService(ctx context.Context, s *types.TaskService) error
	DeleteTaskService(ctx context.Context, id string) error

	// Releases
	CreateRelease(ctx context.Context, r *types.Release) error
	GetRelease(ctx context.Context, id string) (*types.Release, error)
	ListReleases(ctx context.Context) ([]*types.Release, error)
	UpdateRelease(ctx context.Context, r *types.Release) error

	// Tasks
	CreateTask(ctx context.Context, t *types.Task) error
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasksByRelease(ctx context.Context, releaseID string) ([]*types.Task, error)
	ListTasksByTaskService(ctx context.Context, taskServiceID string) ([]*types.Task, error)
	UpdateTask(ctx context.Context, t *types.Task) error

	// Events
	CreateEvent(ctx context.Context, e *types.Event) error
	ListEventsByRelease(ctx context.Context, releaseID string) ([]*types.Event, error)
	ListEventsByTask(ctx context.Context, taskID string) ([]*types.Event, error)

	// Atomic runs fn within a single transactional scope. Implementations
	// that cannot offer real transactions (the in-memory store) run fn
	// directly: each Store call inside fn is locked on its own, with no
	// isolation across calls and no rollback.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error

	// Utility
	Close() error
}
