package orchestrator

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/ids"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/cuemby/coordinator/pkg/validate"
	"github.com/google/uuid"
)

// RegisterTaskService validates and persists a new task service (spec
// §4.1).
func (s *Service) RegisterTaskService(ctx context.Context, name, description, url, author string) (*types.TaskService, error) {
	if err := validate.Name("name", name); err != nil {
		return nil, err
	}
	if err := validate.TaskServiceURL(url); err != nil {
		return nil, err
	}

	svc := &types.TaskService{
		ID:          ids.New(ids.PrefixTaskService),
		UUID:        uuid.New(),
		Name:        name,
		Description: description,
		URL:         url,
		Author:      author,
		Enabled:     true,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateTaskService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// SetTaskServiceEnabled flips a task service's participation flag. Enabled
// is read at the moment a release is initialized (spec §4.4's fan-out
// snapshot), so toggling it has no effect on releases already running.
func (s *Service) SetTaskServiceEnabled(ctx context.Context, id string, enabled bool) (*types.TaskService, error) {
	svc, err := s.store.GetTaskService(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.Enabled = enabled
	if err := s.store.UpdateTaskService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteTaskService removes a task service and cascades: any non-terminal
// task still referencing it is force-canceled, and the owning release of
// each such task is cancel-propagated too (spec §4.1, §3 Ownership).
func (s *Service) DeleteTaskService(ctx context.Context, id string) error {
	if _, err := s.store.GetTaskService(ctx, id); err != nil {
		return err
	}

	tasks, err := s.store.ListTasksByTaskService(ctx, id)
	if err != nil {
		return err
	}

	affectedReleases := map[string]bool{}
	for _, t := range tasks {
		if !t.State.Terminal() {
			if err := s.taskMachine.Transition(ctx, t, "cancel"); err != nil {
				return err
			}
			affectedReleases[t.ReleaseID] = true
		}
	}

	for releaseID := range affectedReleases {
		if err := s.RequestCancel(ctx, releaseID); err != nil {
			return err
		}
	}

	return s.store.DeleteTaskService(ctx, id)
}

// TriggerHealthSweep enqueues one health_check job per registered task
// service, enabled or not, grounded on the original registry's bulk
// health_checks action covering the full roster rather than just enabled
// services.
func (s *Service) TriggerHealthSweep(ctx context.Context) error {
	services, err := s.store.ListTaskServices(ctx)
	if err != nil {
		return err
	}
	for _, svc := range services {
		if err := s.dispatcher.HealthCheck(ctx, svc.ID); err != nil {
			return err
		}
	}
	return nil
}

// HealthCheck implements jobs.Handlers by delegating to the health
// monitor.
func (s *Service) HealthCheck(ctx context.Context, taskServiceID string) error {
	return s.monitor.Check(ctx, taskServiceID)
}
