// Package orchestrator implements the release-coordination logic built on
// top of the two FSMs in pkg/fsm: creating releases, fanning commands out
// to task services, gathering their replies into quorum decisions, and
// propagating cancellation. It is the thing spec §4 collectively
// describes as the coordinator.
package orchestrator

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/fsm"
	"github.com/cuemby/coordinator/pkg/health"
	"github.com/cuemby/coordinator/pkg/jobs"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/taskclient"
)

// Service wires the FSMs, storage, health monitor, and job dispatcher
// together. It implements jobs.Handlers so a job runner can dispatch
// straight into it.
type Service struct {
	store          storage.Store
	journal        *events.Journal
	taskMachine    *fsm.TaskMachine
	releaseMachine *fsm.ReleaseMachine
	monitor        *health.Monitor
	dispatcher     jobs.Dispatcher

	// newClient builds the outbound HTTP client for a task service's base
	// URL. Overridable in tests to avoid real network calls.
	newClient func(url string) TaskServiceClient

	// taskTimeout is spec §6's TASK_TIMEOUT (default 30m, overridden via
	// WithTaskTimeout from config.Config.TaskTimeout).
	taskTimeout time.Duration
}

// TaskServiceClient is the subset of taskclient.Client the orchestrator
// needs, narrowed to an interface so tests can stub it.
type TaskServiceClient interface {
	Command(ctx context.Context, req taskclient.CommandRequest) error
	Status(ctx context.Context, taskID, releaseID string) (*taskclient.StatusReply, error)
}

// New builds a Service over the given collaborators.
func New(store storage.Store, journal *events.Journal, monitor *health.Monitor, dispatcher jobs.Dispatcher) *Service {
	return &Service{
		store:          store,
		journal:        journal,
		taskMachine:    fsm.NewTaskMachine(store, journal),
		releaseMachine: fsm.NewReleaseMachine(store, journal),
		monitor:        monitor,
		dispatcher:     dispatcher,
		newClient: func(url string) TaskServiceClient {
			return taskclient.New(url)
		},
		taskTimeout: 30 * time.Minute,
	}
}

// WithClientFactory overrides how the Service builds outbound clients.
func (s *Service) WithClientFactory(f func(url string) TaskServiceClient) *Service {
	s.newClient = f
	return s
}

// WithTaskTimeout overrides the default TASK_TIMEOUT (spec §6).
func (s *Service) WithTaskTimeout(d time.Duration) *Service {
	s.taskTimeout = d
	return s
}

// WithDispatcher rewires the Service onto dispatcher after construction.
// It exists for cmd/coordinator's bootstrap, where the River dispatcher's
// workers need a Handlers (this Service) before the dispatcher itself
// exists to hand back to New.
func (s *Service) WithDispatcher(d jobs.Dispatcher) *Service {
	s.dispatcher = d
	return s
}

// Journal returns the event journal the Service was built with, so
// cmd/coordinator can hand the same instance to the HTTP API's activity
// feed endpoint without constructing a second one.
func (s *Service) Journal() *events.Journal {
	return s.journal
}
