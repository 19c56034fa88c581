package jobs

import (
	"context"
	"sync"
)

// MemoryDispatcher is an in-process Dispatcher used by tests: it runs each
// job's handler synchronously on enqueue rather than going through
// Postgres/River. It exists so orchestrator tests can assert on what got
// enqueued without standing up a database.
type MemoryDispatcher struct {
	mu       sync.Mutex
	handlers Handlers
	Calls    []string
}

// NewMemoryDispatcher builds a MemoryDispatcher that invokes handlers
// synchronously. Pass nil handlers to just record calls without running
// them (useful when a test only cares that a job was enqueued).
func NewMemoryDispatcher(handlers Handlers) *MemoryDispatcher {
	return &MemoryDispatcher{handlers: handlers}
}

// SetHandlers wires handlers after construction, for callers that need a
// Dispatcher to build a Handlers implementation before the implementation
// itself exists (the orchestrator Service needs a Dispatcher to be built,
// and the in-memory dev mode has nothing else to supply one).
func (d *MemoryDispatcher) SetHandlers(handlers Handlers) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = handlers
}

func (d *MemoryDispatcher) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, call)
}

func (d *MemoryDispatcher) InitRelease(ctx context.Context, releaseID string) error {
	d.record("init_release:" + releaseID)
	if d.handlers == nil {
		return nil
	}
	return d.handlers.InitRelease(ctx, releaseID)
}

func (d *MemoryDispatcher) PublishRelease(ctx context.Context, releaseID string) error {
	d.record("publish_release:" + releaseID)
	if d.handlers == nil {
		return nil
	}
	return d.handlers.PublishRelease(ctx, releaseID)
}

func (d *MemoryDispatcher) CancelRelease(ctx context.Context, releaseID string) error {
	d.record("cancel_release:" + releaseID)
	if d.handlers == nil {
		return nil
	}
	return d.handlers.CancelRelease(ctx, releaseID)
}

func (d *MemoryDispatcher) StatusPoll(ctx context.Context, taskID string) error {
	d.record("status_poll:" + taskID)
	if d.handlers == nil {
		return nil
	}
	return d.handlers.StatusPoll(ctx, taskID)
}

func (d *MemoryDispatcher) HealthCheck(ctx context.Context, taskServiceID string) error {
	d.record("health_check:" + taskServiceID)
	if d.handlers == nil {
		return nil
	}
	return d.handlers.HealthCheck(ctx, taskServiceID)
}
