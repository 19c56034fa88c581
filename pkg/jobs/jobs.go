// Package jobs implements the Job Dispatcher from spec §4.7: background
// work items enqueued by the orchestration layer and drained by workers.
// The contract is split into two interfaces so the packages that produce
// work (orchestrator) and the package that runs it (this one, via River)
// do not import each other: Dispatcher is what producers call, Handlers is
// what the River-backed runner calls back into.
package jobs

import "context"

// Kind identifies a job's payload shape and routes it to the matching
// River worker.
type Kind string

const (
	KindInitRelease    Kind = "init_release"
	KindPublishRelease Kind = "publish_release"
	KindCancelRelease  Kind = "cancel_release"
	KindStatusPoll     Kind = "status_poll"
	KindHealthCheck    Kind = "health_check"
)

// InitReleaseArgs drives a release from waiting through to running (spec
// §4.7's init_release: initialize + start fan-out).
type InitReleaseArgs struct {
	ReleaseID string `json:"release_id"`
}

// Kind implements river.JobArgs.
func (InitReleaseArgs) Kind() string { return string(KindInitRelease) }

// PublishReleaseArgs fans out the publish command to every task of a
// release (spec §4.7's publish_release).
type PublishReleaseArgs struct {
	ReleaseID string `json:"release_id"`
}

func (PublishReleaseArgs) Kind() string { return string(KindPublishRelease) }

// CancelReleaseArgs propagates a cancel to every non-terminal task of a
// release (spec §4.7's cancel_release). Idempotent against a release that
// is already canceling, canceled, or otherwise terminal.
type CancelReleaseArgs struct {
	ReleaseID string `json:"release_id"`
}

func (CancelReleaseArgs) Kind() string { return string(KindCancelRelease) }

// StatusPollArgs carries the single task to poll — spec §4.7 defines
// status_poll(task_id) as one independent job per task, not a
// coordinator-wide sweep job (spec §4.5, §5: "individual polls are
// independent jobs on G and may run in parallel").
type StatusPollArgs struct {
	TaskID string `json:"task_id"`
}

func (StatusPollArgs) Kind() string { return string(KindStatusPoll) }

// HealthCheckArgs probes one registered task service (spec §4.2).
type HealthCheckArgs struct {
	TaskServiceID string `json:"task_service_id"`
}

func (HealthCheckArgs) Kind() string { return string(KindHealthCheck) }

// Dispatcher is how the orchestration layer enqueues background work. It
// deliberately returns only an enqueue error, never a result — jobs run
// asynchronously.
type Dispatcher interface {
	InitRelease(ctx context.Context, releaseID string) error
	PublishRelease(ctx context.Context, releaseID string) error
	CancelRelease(ctx context.Context, releaseID string) error
	StatusPoll(ctx context.Context, taskID string) error
	HealthCheck(ctx context.Context, taskServiceID string) error
}

// Handlers is the business logic a job runner invokes once a job is
// dequeued. The orchestrator package's concrete Service type satisfies
// this interface structurally; this package never imports orchestrator.
type Handlers interface {
	InitRelease(ctx context.Context, releaseID string) error
	PublishRelease(ctx context.Context, releaseID string) error
	CancelRelease(ctx context.Context, releaseID string) error
	StatusPoll(ctx context.Context, taskID string) error
	HealthCheck(ctx context.Context, taskServiceID string) error
}
