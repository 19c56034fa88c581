package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreTaskServiceCRUD(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	ts := &types.TaskService{ID: "TS_00000001", Name: "ingest", URL: "http://ingest.local", Enabled: true, CreatedAt: time.Now()}
	require.NoError(t, s.CreateTaskService(ctx, ts))

	got, err := s.GetTaskService(ctx, ts.ID)
	require.NoError(t, err)
	require.Equal(t, "ingest", got.Name)

	got.ConsecutiveFailures = 5
	require.NoError(t, s.UpdateTaskService(ctx, got))

	reloaded, err := s.GetTaskService(ctx, ts.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.ConsecutiveFailures)

	enabled, err := s.ListEnabledTaskServices(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)

	require.NoError(t, s.DeleteTaskService(ctx, ts.ID))
	_, err = s.GetTaskService(ctx, ts.ID)
	require.True(t, cerrors.Is(err, cerrors.KindNotFound))
}

func TestMemoryStoreTasksByRelease(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	release := &types.Release{ID: "RE_00000001", State: types.ReleaseWaiting}
	require.NoError(t, s.CreateRelease(ctx, release))

	for i := 0; i < 3; i++ {
		task := &types.Task{ID: string(rune('A'+i)) + "_task", ReleaseID: release.ID, TaskServiceID: "TS_1", State: types.TaskWaiting}
		require.NoError(t, s.CreateTask(ctx, task))
	}

	tasks, err := s.ListTasksByRelease(ctx, release.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
}

func TestMemoryStoreUpdateMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	err := s.UpdateTask(ctx, &types.Task{ID: "TA_missing"})
	require.True(t, cerrors.Is(err, cerrors.KindNotFound))
}
