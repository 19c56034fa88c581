package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/health"
	"github.com/cuemby/coordinator/pkg/jobs"
	"github.com/cuemby/coordinator/pkg/orchestrator"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/taskclient"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	commandErr error
	status     *taskclient.StatusReply
	statusErr  error
}

func (f *fakeClient) Command(ctx context.Context, req taskclient.CommandRequest) error {
	return f.commandErr
}

func (f *fakeClient) Status(ctx context.Context, taskID, releaseID string) (*taskclient.StatusReply, error) {
	return f.status, f.statusErr
}

func newTestService(t *testing.T, client *fakeClient) (*orchestrator.Service, storage.Store, *jobs.MemoryDispatcher) {
	t.Helper()
	store := storage.NewMemoryStore()
	journal := events.NewJournal(store, events.NewBroker(), events.NopPublisher{})
	monitor := health.NewMonitor(store, journal)

	dispatcher := jobs.NewMemoryDispatcher(nil)
	svc := orchestrator.New(store, journal, monitor, dispatcher).
		WithClientFactory(func(url string) orchestrator.TaskServiceClient { return client })
	return svc, store, dispatcher
}

func TestCreateReleaseEnqueuesInit(t *testing.T) {
	svc, _, dispatcher := newTestService(t, &fakeClient{})
	release, err := svc.CreateRelease(context.Background(), "r1", "", "author", nil, []string{"SD_00000001"})
	require.NoError(t, err)
	require.Equal(t, types.ReleaseWaiting, release.State)
	require.Contains(t, dispatcher.Calls, "init_release:"+release.ID)
}

func TestInitReleasePromotesToRunningOnAllSynchronousSuccess(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseWaiting, Studies: []string{"SD_00000001"}, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))

	require.NoError(t, svc.InitRelease(ctx, release.ID))

	got, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseRunning, got.State)

	tasks, err := store.ListTasksByRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, types.TaskRunning, tasks[0].State)
}

func TestInitReleaseCancelsOnCommandFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, dispatcher := newTestService(t, &fakeClient{commandErr: errors.New("boom")})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseWaiting, Studies: []string{"SD_00000001"}, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))

	require.NoError(t, svc.InitRelease(ctx, release.ID))

	got, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseCanceling, got.State)
	require.Contains(t, dispatcher.Calls, "cancel_release:"+release.ID)
}

func TestApplyTaskUpdateAdvancesReleaseOnQuorum(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{})

	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.ApplyTaskUpdate(ctx, task.ID, string(types.TaskStaged), 100))

	gotTask, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, types.TaskStaged, gotTask.State)

	gotRelease, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseStaged, gotRelease.State)
}

func TestCancelReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{})

	release := &types.Release{ID: "RE_1", State: types.ReleaseCanceled, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))

	require.NoError(t, svc.CancelRelease(ctx, release.ID))
}
