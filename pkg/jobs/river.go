package jobs

import (
	"context"
	"fmt"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// RiverDispatcher implements Dispatcher by inserting jobs into River's
// Postgres-backed queue, sharing the same pool the Store uses.
type RiverDispatcher struct {
	client *river.Client[pgx.Tx]
}

// queue is the single River queue the coordinator uses; release
// orchestration has no need for queue-per-priority routing yet.
const queue = river.QueueDefault

// NewRiverDispatcher builds a client with workers bound to handlers and
// starts it running.
func NewRiverDispatcher(ctx context.Context, pool *pgxpool.Pool, handlers Handlers) (*RiverDispatcher, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, &initReleaseWorker{handlers: handlers})
	river.AddWorker(workers, &publishReleaseWorker{handlers: handlers})
	river.AddWorker(workers, &cancelReleaseWorker{handlers: handlers})
	river.AddWorker(workers, &statusPollWorker{handlers: handlers})
	river.AddWorker(workers, &healthCheckWorker{handlers: handlers})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			queue: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: build river client: %w", err)
	}

	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("jobs: start river client: %w", err)
	}

	return &RiverDispatcher{client: client}, nil
}

// Stop stops the River client, waiting for in-flight jobs to finish.
func (d *RiverDispatcher) Stop(ctx context.Context) error {
	return d.client.Stop(ctx)
}

func (d *RiverDispatcher) InitRelease(ctx context.Context, releaseID string) error {
	_, err := d.client.Insert(ctx, InitReleaseArgs{ReleaseID: releaseID}, nil)
	return err
}

func (d *RiverDispatcher) PublishRelease(ctx context.Context, releaseID string) error {
	_, err := d.client.Insert(ctx, PublishReleaseArgs{ReleaseID: releaseID}, nil)
	return err
}

func (d *RiverDispatcher) CancelRelease(ctx context.Context, releaseID string) error {
	_, err := d.client.Insert(ctx, CancelReleaseArgs{ReleaseID: releaseID}, nil)
	return err
}

func (d *RiverDispatcher) StatusPoll(ctx context.Context, taskID string) error {
	_, err := d.client.Insert(ctx, StatusPollArgs{TaskID: taskID}, nil)
	return err
}

func (d *RiverDispatcher) HealthCheck(ctx context.Context, taskServiceID string) error {
	_, err := d.client.Insert(ctx, HealthCheckArgs{TaskServiceID: taskServiceID}, nil)
	return err
}

// Each worker below is a thin adapter from a River job to the matching
// Handlers method, logging and returning the handler's error so River's
// own retry policy applies.

type initReleaseWorker struct {
	river.WorkerDefaults[InitReleaseArgs]
	handlers Handlers
}

func (w *initReleaseWorker) Work(ctx context.Context, job *river.Job[InitReleaseArgs]) error {
	if err := w.handlers.InitRelease(ctx, job.Args.ReleaseID); err != nil {
		log.Logger.Error().Err(err).Str("release_id", job.Args.ReleaseID).Msg("jobs: init_release failed")
		return err
	}
	return nil
}

type publishReleaseWorker struct {
	river.WorkerDefaults[PublishReleaseArgs]
	handlers Handlers
}

func (w *publishReleaseWorker) Work(ctx context.Context, job *river.Job[PublishReleaseArgs]) error {
	if err := w.handlers.PublishRelease(ctx, job.Args.ReleaseID); err != nil {
		log.Logger.Error().Err(err).Str("release_id", job.Args.ReleaseID).Msg("jobs: publish_release failed")
		return err
	}
	return nil
}

type cancelReleaseWorker struct {
	river.WorkerDefaults[CancelReleaseArgs]
	handlers Handlers
}

func (w *cancelReleaseWorker) Work(ctx context.Context, job *river.Job[CancelReleaseArgs]) error {
	if err := w.handlers.CancelRelease(ctx, job.Args.ReleaseID); err != nil {
		log.Logger.Error().Err(err).Str("release_id", job.Args.ReleaseID).Msg("jobs: cancel_release failed")
		return err
	}
	return nil
}

type statusPollWorker struct {
	river.WorkerDefaults[StatusPollArgs]
	handlers Handlers
}

func (w *statusPollWorker) Work(ctx context.Context, job *river.Job[StatusPollArgs]) error {
	if err := w.handlers.StatusPoll(ctx, job.Args.TaskID); err != nil {
		log.Logger.Error().Err(err).Str("task_id", job.Args.TaskID).Msg("jobs: status_poll failed")
		return err
	}
	return nil
}

type healthCheckWorker struct {
	river.WorkerDefaults[HealthCheckArgs]
	handlers Handlers
}

func (w *healthCheckWorker) Work(ctx context.Context, job *river.Job[HealthCheckArgs]) error {
	if err := w.handlers.HealthCheck(ctx, job.Args.TaskServiceID); err != nil {
		log.Logger.Error().Err(err).Str("task_service_id", job.Args.TaskServiceID).Msg("jobs: health_check failed")
		return err
	}
	return nil
}
