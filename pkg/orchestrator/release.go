package orchestrator

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/ids"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/cuemby/coordinator/pkg/validate"
	"github.com/google/uuid"
)

// CreateRelease validates input, persists a waiting Release, and enqueues
// the init_release job that begins the fan-out (spec §4.4, §8 Scenario 1).
func (s *Service) CreateRelease(ctx context.Context, name, description, author string, tags, studies []string) (*types.Release, error) {
	if err := validate.Name("name", name); err != nil {
		return nil, err
	}
	if err := validate.Tags(tags); err != nil {
		return nil, err
	}
	if err := validate.Studies(studies); err != nil {
		return nil, err
	}

	release := &types.Release{
		ID:          ids.New(ids.PrefixRelease),
		UUID:        uuid.New(),
		Name:        name,
		Description: description,
		Author:      author,
		Tags:        tags,
		Studies:     studies,
		State:       types.ReleaseWaiting,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateRelease(ctx, release); err != nil {
		return nil, err
	}

	if err := s.dispatcher.InitRelease(ctx, release.ID); err != nil {
		return nil, err
	}

	return release, nil
}

// RequestPublish moves a staged release into publishing and enqueues the
// publish_release fan-out (spec §4.7's publish_release).
func (s *Service) RequestPublish(ctx context.Context, releaseID string) error {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if release.State != types.ReleaseStaged {
		return cerrors.InvalidTransition("release", "publish", release.State)
	}

	if err := s.releaseMachine.Transition(ctx, release, "publish"); err != nil {
		return err
	}
	return s.dispatcher.PublishRelease(ctx, releaseID)
}

// RequestCancel transitions release to canceling (no-op if it is already
// past the point of cancellation) and enqueues cancel propagation.
func (s *Service) RequestCancel(ctx context.Context, releaseID string) error {
	release, err := s.store.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}
	if err := s.releaseMachine.TryCancel(ctx, release); err != nil {
		return err
	}
	return s.dispatcher.CancelRelease(ctx, releaseID)
}
