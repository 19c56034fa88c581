package orchestrator

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/types"
)

// TriggerStatusPollSweep enqueues one status_poll job per non-poll-terminal
// task of every non-terminal release, mirroring TriggerHealthSweep's shape.
// The periodic coordinator-wide tick only discovers work here — individual
// polls run as independent jobs on G and may run in parallel (spec §4.5,
// §4.7, §5).
func (s *Service) TriggerStatusPollSweep(ctx context.Context) error {
	releases, err := s.store.ListReleases(ctx)
	if err != nil {
		return err
	}

	for _, release := range releases {
		if release.State.Terminal() {
			continue
		}
		tasks, err := s.store.ListTasksByRelease(ctx, release.ID)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			if task.State.TerminalForPoll() {
				continue
			}
			if err := s.dispatcher.StatusPoll(ctx, task.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// StatusPoll implements jobs.Handlers: polls a single task's remote status
// and applies the resulting state/timeout logic, in the order spec §4.5
// lays out — (1) the remote call, returning early on any transport error,
// (2) state-divergence handling, (3) the inactivity-timeout check, then
// (4)-(5) the progress refresh and persist. It is a no-op if the task has
// already reached a poll-terminal state or its release is already terminal
// by the time the job runs, since status_poll jobs are at-least-once (spec
// §4.7) and may be delivered after the phase driver or another poll already
// moved things along.
func (s *Service) StatusPoll(ctx context.Context, taskID string) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.State.TerminalForPoll() {
		return nil
	}

	release, err := s.store.GetRelease(ctx, task.ReleaseID)
	if err != nil {
		return err
	}
	if release.State.Terminal() {
		return nil
	}

	svc, err := s.store.GetTaskService(ctx, task.TaskServiceID)
	if err != nil {
		return nil
	}

	// 1. Send get_status. Any connection or HTTP error cancels the release.
	reply, err := s.newClient(svc.URL).Status(ctx, task.ID, release.ID)
	if err != nil {
		log.WithTask(task.ID).Warn().Err(err).Msg("orchestrator: status poll request failed, canceling release")
		return s.RequestCancel(ctx, release.ID)
	}

	// 2. Act on a reported terminal state; anything else is informational,
	// left for the phase driver or the PATCH path to advance.
	switch reply.State {
	case string(types.TaskCanceled):
		if err := s.taskMachine.Transition(ctx, task, "cancel"); err != nil {
			return err
		}
	case string(types.TaskFailed):
		if err := s.taskMachine.Transition(ctx, task, "fail"); err != nil {
			return err
		}
		if err := s.RequestCancel(ctx, release.ID); err != nil {
			return err
		}
	}

	// 3. A task not already poll-terminal (including by the transition just
	// above) that has sat past TASK_TIMEOUT since its last Event cancels the
	// release without being forced itself.
	if !task.State.TerminalForPoll() {
		lastEvent, err := s.lastEventTime(ctx, task)
		if err != nil {
			return err
		}
		if time.Since(lastEvent) > s.taskTimeout {
			log.WithTask(task.ID).Warn().Dur("timeout", s.taskTimeout).Msg("orchestrator: task exceeded inactivity timeout, canceling release")
			return s.RequestCancel(ctx, release.ID)
		}
	}

	// 4-5. Refresh and persist progress, coercing a missing/out-of-range
	// value into [0, 100].
	if task.Progress != clampProgress(reply.Progress) {
		task.Progress = clampProgress(reply.Progress)
		if err := s.store.UpdateTask(ctx, task); err != nil {
			return err
		}
	}

	return nil
}

// lastEventTime returns the timestamp of task's most recent Event, or its
// creation time if none has been journaled yet.
func (s *Service) lastEventTime(ctx context.Context, task *types.Task) (time.Time, error) {
	evs, err := s.store.ListEventsByTask(ctx, task.ID)
	if err != nil {
		return time.Time{}, err
	}
	if len(evs) == 0 {
		return task.CreatedAt, nil
	}
	last := evs[0].CreatedAt
	for _, ev := range evs[1:] {
		if ev.CreatedAt.After(last) {
			last = ev.CreatedAt
		}
	}
	return last, nil
}
