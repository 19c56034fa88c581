// Package types holds the coordinator's persisted entities: the things a
// release orchestration actually reasons about, independent of how they are
// stored or exposed over HTTP.
package types

import (
	"time"

	"github.com/google/uuid"
)

// HealthStatus is the derived health of a TaskService.
type HealthStatus string

const (
	HealthOK   HealthStatus = "ok"
	HealthDown HealthStatus = "down"
)

// consecutiveFailureThreshold is the largest number of consecutive failed
// health pings at which a TaskService is still considered ok; one more
// failure makes it down. Changing this only
// affects the read path (HealthStatus); it is never persisted.
const consecutiveFailureThreshold = 3

// TaskService is a registered remote worker endpoint that participates in
// releases by implementing the task-service protocol (GET /status, POST
// /tasks).
type TaskService struct {
	ID                  string    `json:"id"`
	UUID                uuid.UUID `json:"-"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	URL                 string    `json:"url"`
	Author              string    `json:"author"`
	Enabled             bool      `json:"enabled"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	CreatedAt           time.Time `json:"created_at"`
}

// HealthStatus derives ok/down from the consecutive failure counter.
func (s *TaskService) HealthStatus() HealthStatus {
	if s.ConsecutiveFailures <= consecutiveFailureThreshold {
		return HealthOK
	}
	return HealthDown
}

// ReleaseState is one node of the release lifecycle FSM (spec §4.4).
type ReleaseState string

const (
	ReleaseWaiting      ReleaseState = "waiting"
	ReleaseInitializing ReleaseState = "initializing"
	ReleaseRunning      ReleaseState = "running"
	ReleaseStaged       ReleaseState = "staged"
	ReleasePublishing   ReleaseState = "publishing"
	ReleasePublished    ReleaseState = "published"
	ReleaseCanceling    ReleaseState = "canceling"
	ReleaseCanceled     ReleaseState = "canceled"
	ReleaseFailed       ReleaseState = "failed"
)

// Terminal reports whether no further release transitions are possible.
func (s ReleaseState) Terminal() bool {
	switch s {
	case ReleasePublished, ReleaseCanceled, ReleaseFailed:
		return true
	default:
		return false
	}
}

// Release is a scheduled data release bundling one or more studies.
type Release struct {
	ID          string       `json:"id"`
	UUID        uuid.UUID    `json:"-"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Tags        []string     `json:"tags"`
	Studies     []string     `json:"studies"`
	State       ReleaseState `json:"state"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TaskState is one node of the per-task lifecycle FSM (spec §4.3).
type TaskState string

const (
	TaskWaiting     TaskState = "waiting"
	TaskInitialized TaskState = "initialized"
	TaskRunning     TaskState = "running"
	TaskStaged      TaskState = "staged"
	TaskPublishing  TaskState = "publishing"
	TaskPublished   TaskState = "published"
	TaskRejected    TaskState = "rejected"
	TaskFailed      TaskState = "failed"
	TaskCanceled    TaskState = "canceled"
)

// Terminal reports whether no further task transitions are possible.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskPublished, TaskRejected, TaskFailed, TaskCanceled:
		return true
	default:
		return false
	}
}

// TerminalForPoll reports whether the status poller should stop measuring
// inactivity timeout for a task in this state (spec §4.5 step 3).
func (s TaskState) TerminalForPoll() bool {
	switch s {
	case TaskStaged, TaskPublished, TaskCanceled, TaskFailed:
		return true
	default:
		return false
	}
}

// Task is one (release, task-service) pairing.
type Task struct {
	ID            string    `json:"id"`
	UUID          uuid.UUID `json:"-"`
	ReleaseID     string    `json:"release"`
	TaskServiceID string    `json:"task_service"`
	State         TaskState `json:"state"`
	Progress      int       `json:"progress"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventType classifies the severity of an Event.
type EventType string

const (
	EventInfo    EventType = "info"
	EventWarning EventType = "warning"
	EventError   EventType = "error"
)

// Event is an append-only audit record created as a side effect of a state
// transition or an explicit system action. References to Release/Task/
// TaskService are soft (nullable) so they survive deletion of the referent.
type Event struct {
	ID            string    `json:"id"`
	UUID          uuid.UUID `json:"-"`
	Type          EventType `json:"event_type"`
	Message       string    `json:"message"`
	ReleaseID     *string   `json:"release"`
	TaskID        *string   `json:"task"`
	TaskServiceID *string   `json:"task_service"`
	CreatedAt     time.Time `json:"created_at"`
}
