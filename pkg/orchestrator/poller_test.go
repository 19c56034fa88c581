package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/taskclient"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestStatusPollCancelsReleaseOnRemoteUnavailability(t *testing.T) {
	ctx := context.Background()
	svc, store, dispatcher := newTestService(t, &fakeClient{statusErr: errors.New("connection refused")})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.StatusPoll(ctx, task.ID))

	got, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseCanceling, got.State)
	require.Contains(t, dispatcher.Calls, "cancel_release:"+release.ID)
}

func TestStatusPollRefreshesProgressWithoutForcingTransition(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{status: &taskclient.StatusReply{State: "running", Progress: 250}})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, Progress: 10, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.StatusPoll(ctx, task.ID))

	gotTask, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, types.TaskRunning, gotTask.State)
	require.Equal(t, 100, gotTask.Progress, "progress must clamp to 100 even though the remote reported 250")
}

func TestStatusPollCancelsReleaseOnInactivityTimeoutWithoutForcingTask(t *testing.T) {
	ctx := context.Background()
	svc, store, dispatcher := newTestService(t, &fakeClient{status: &taskclient.StatusReply{State: "running"}})
	svc.WithTaskTimeout(time.Millisecond)

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.StatusPoll(ctx, task.ID))

	gotRelease, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseCanceling, gotRelease.State)
	require.Contains(t, dispatcher.Calls, "cancel_release:"+release.ID)

	gotTask, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, types.TaskRunning, gotTask.State, "the task itself is not forced, only the release cancels")
}

func TestStatusPollSkipsPollTerminalTasks(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, &fakeClient{statusErr: errors.New("should never be called")})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseStaged, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskStaged, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.StatusPoll(ctx, task.ID))

	gotRelease, err := store.GetRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Equal(t, types.ReleaseStaged, gotRelease.State)
}

func TestStatusPollFailSignalForcesTaskAndCancelsRelease(t *testing.T) {
	ctx := context.Background()
	svc, store, dispatcher := newTestService(t, &fakeClient{status: &taskclient.StatusReply{State: "failed"}})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))
	task := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, svc.StatusPoll(ctx, task.ID))

	gotTask, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, types.TaskFailed, gotTask.State)
	require.Contains(t, dispatcher.Calls, "cancel_release:"+release.ID)
}

func TestTriggerStatusPollSweepEnqueuesOneJobPerNonTerminalTask(t *testing.T) {
	ctx := context.Background()
	svc, store, dispatcher := newTestService(t, &fakeClient{})

	require.NoError(t, store.CreateTaskService(ctx, &types.TaskService{ID: "TS_1", URL: "http://x", Enabled: true, CreatedAt: time.Now()}))
	release := &types.Release{ID: "RE_1", State: types.ReleaseRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, release))

	running := &types.Task{ID: "TA_1", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskRunning, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, running))
	staged := &types.Task{ID: "TA_2", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskStaged, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, staged))

	done := &types.Release{ID: "RE_2", State: types.ReleasePublished, CreatedAt: time.Now()}
	require.NoError(t, store.CreateRelease(ctx, done))
	doneTask := &types.Task{ID: "TA_3", ReleaseID: done.ID, TaskServiceID: "TS_1", State: types.TaskPublished, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTask(ctx, doneTask))

	require.NoError(t, svc.TriggerStatusPollSweep(ctx))

	require.Equal(t, []string{"status_poll:" + running.ID}, dispatcher.Calls,
		"only the non-poll-terminal task of the non-terminal release gets a job")
}
