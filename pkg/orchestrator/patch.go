package orchestrator

import (
	"context"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/fsm"
	"github.com/cuemby/coordinator/pkg/types"
)

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ApplyTaskUpdate is the PATCH-driven path from spec §6: a task service
// pushes its own {state, progress}, which mirrors what the poller would
// observe but arrives out of band and is applied immediately rather than
// waiting for the next poll tick. Unlike the poller, any valid target
// state is accepted, translated into the matching FSM action via a
// reverse edge lookup.
func (s *Service) ApplyTaskUpdate(ctx context.Context, taskID string, reportedState string, progress int) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	target := types.TaskState(reportedState)
	task.Progress = clampProgress(progress)

	if target == task.State {
		// No transition, just a progress refresh.
		return s.store.UpdateTask(ctx, task)
	}

	action, ok := fsm.TaskActionForTarget(task.State, target)
	if !ok {
		return cerrors.InvalidTransition("task", "patch to "+reportedState, task.State)
	}

	if err := s.taskMachine.Transition(ctx, task, action); err != nil {
		return err
	}

	return s.maybeAdvanceRelease(ctx, task.ReleaseID)
}

// maybeAdvanceRelease implements the gather half of the fan-out/gather
// protocol (spec §4.4): once every task of a release has independently
// reached a phase's target state, the release itself advances. It is
// invoked only from ApplyTaskUpdate, after a PATCH-driven transition; the
// status poller does not call it and does not promote releases.
func (s *Service) maybeAdvanceRelease(ctx context.Context, releaseID string) error {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release.State.Terminal() {
		return nil
	}

	tasks, err := s.store.ListTasksByRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	allStaged, allPublished := true, true
	for _, t := range tasks {
		if t.State != types.TaskStaged {
			allStaged = false
		}
		if t.State != types.TaskPublished {
			allPublished = false
		}
	}

	switch {
	case allPublished && release.State == types.ReleasePublishing:
		return s.releaseMachine.Transition(ctx, release, "complete")
	case allStaged && release.State == types.ReleaseRunning:
		return s.releaseMachine.Transition(ctx, release, "staged")
	}
	return nil
}
