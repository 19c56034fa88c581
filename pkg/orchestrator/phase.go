package orchestrator

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/ids"
	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/taskclient"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/google/uuid"
)

// InitRelease implements jobs.Handlers. It snapshots the currently enabled
// task services, creates one Task per service, and synchronously fans out
// initialize then start commands — both are ordinary synchronous HTTP
// calls within this one job, so a release with every task already running
// is promoted straight to running without waiting for a poll tick (spec
// §8 Scenario 1).
func (s *Service) InitRelease(ctx context.Context, releaseID string) error {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release.State != types.ReleaseWaiting {
		// Already progressed past this job's starting point — a retry
		// landed after a prior attempt partially succeeded.
		return nil
	}

	if err := s.releaseMachine.Transition(ctx, release, "initialize"); err != nil {
		return err
	}

	services, err := s.store.ListEnabledTaskServices(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		log.WithRelease(release.ID).Warn().Msg("orchestrator: no enabled task services, failing release")
		return s.releaseMachine.Transition(ctx, release, "failed")
	}

	tasks := make([]*types.Task, 0, len(services))
	for _, svc := range services {
		task := &types.Task{
			ID:            ids.New(ids.PrefixTask),
			UUID:          uuid.New(),
			ReleaseID:     release.ID,
			TaskServiceID: svc.ID,
			State:         types.TaskWaiting,
			CreatedAt:     time.Now(),
		}
		if err := s.store.CreateTask(ctx, task); err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	if ok, err := s.fanOut(ctx, release, services, tasks, "initialize"); err != nil || !ok {
		return err
	}
	if ok, err := s.fanOut(ctx, release, services, tasks, "start"); err != nil || !ok {
		return err
	}

	allRunning := true
	for _, t := range tasks {
		if t.State != types.TaskRunning {
			allRunning = false
			break
		}
	}
	if allRunning {
		return s.releaseMachine.Transition(ctx, release, "start")
	}
	return nil
}

// PublishRelease implements jobs.Handlers: fans the publish command out to
// every staged task of a release already moved to publishing (by
// RequestPublish); it is a no-op for a release in any other state. Unlike
// InitRelease it does not itself promote the release past publishing —
// that happens once every task reports published, via the PATCH-driven
// quorum gather in ApplyTaskUpdate.
func (s *Service) PublishRelease(ctx context.Context, releaseID string) error {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release.State != types.ReleasePublishing {
		return nil
	}

	tasks, err := s.store.ListTasksByRelease(ctx, releaseID)
	if err != nil {
		return err
	}

	services, err := s.servicesByID(ctx, tasks)
	if err != nil {
		return err
	}

	var staged []*types.Task
	for _, t := range tasks {
		if t.State == types.TaskStaged {
			staged = append(staged, t)
		}
	}

	_, err = s.fanOut(ctx, release, services, staged, "publish")
	return err
}

// fanOut sends action to every task service behind tasks and applies the
// matching FSM transition on success. The first failure — transport error
// or non-2xx — cancels the whole release and stops the fan-out; fanOut
// then reports ok=false so the caller does not proceed to the next phase.
func (s *Service) fanOut(ctx context.Context, release *types.Release, services []*types.TaskService, tasks []*types.Task, action string) (bool, error) {
	byID := make(map[string]*types.TaskService, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	for _, task := range tasks {
		svc, ok := byID[task.TaskServiceID]
		if !ok {
			continue
		}

		client := s.newClient(svc.URL)
		err := client.Command(ctx, taskclient.CommandRequest{
			TaskID:    task.ID,
			ReleaseID: release.ID,
			Action:    action,
		})
		if err != nil {
			log.WithRelease(release.ID).Error().Err(err).Str("task_id", task.ID).Str("action", action).
				Msg("orchestrator: command failed, canceling release")
			if cancelErr := s.RequestCancel(ctx, release.ID); cancelErr != nil {
				return false, cancelErr
			}
			return false, nil
		}

		if err := s.taskMachine.Transition(ctx, task, action); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *Service) servicesByID(ctx context.Context, tasks []*types.Task) ([]*types.TaskService, error) {
	seen := map[string]bool{}
	var out []*types.TaskService
	for _, t := range tasks {
		if seen[t.TaskServiceID] {
			continue
		}
		seen[t.TaskServiceID] = true
		svc, err := s.store.GetTaskService(ctx, t.TaskServiceID)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}
