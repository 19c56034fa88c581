package orchestrator

import (
	"context"

	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/taskclient"
	"github.com/cuemby/coordinator/pkg/types"
)

// CancelRelease implements jobs.Handlers: best-effort cancels every
// non-terminal task of a release, then marks the release canceled once all
// its tasks are terminal. It is idempotent — a release already canceled or
// otherwise terminal is a no-op, and tasks already terminal are skipped; a
// canceling release whose tasks are all terminal is moved to canceled.
func (s *Service) CancelRelease(ctx context.Context, releaseID string) error {
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

	allTerminal := true
	for _, task := range tasks {
		if task.State.Terminal() {
			continue
		}

		if svc, svcErr := s.store.GetTaskService(ctx, task.TaskServiceID); svcErr == nil {
			client := s.newClient(svc.URL)
			if cmdErr := client.Command(ctx, taskclient.CommandRequest{
				TaskID: task.ID, ReleaseID: release.ID, Action: "cancel",
			}); cmdErr != nil {
				log.WithRelease(release.ID).Warn().Err(cmdErr).Str("task_id", task.ID).
					Msg("orchestrator: best-effort cancel command failed, canceling task anyway")
			}
		}

		if err := s.taskMachine.Transition(ctx, task, "cancel"); err != nil {
			return err
		}
	}

	for _, task := range tasks {
		if !task.State.Terminal() {
			allTerminal = false
		}
	}

	if !allTerminal {
		return nil
	}

	if release.State == types.ReleaseCanceling {
		return s.releaseMachine.Transition(ctx, release, "canceled")
	}
	return nil
}
