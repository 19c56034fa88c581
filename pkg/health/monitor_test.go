package health_test

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/health"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubChecker struct{ result health.Result }

func (s stubChecker) Check(ctx context.Context) health.Result { return s.result }

func newTestMonitor(t *testing.T, checker health.Checker) (*health.Monitor, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	journal := events.NewJournal(store, events.NewBroker(), events.NopPublisher{})
	m := health.NewMonitor(store, journal).WithCheckerFactory(func(url string) health.Checker { return checker })
	return m, store
}

func TestMonitorCheckResetsOnSuccess(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMonitor(t, stubChecker{result: health.Result{Healthy: true, CheckedAt: time.Now()}})

	svc := &types.TaskService{ID: "TS_00000001", URL: "http://x", ConsecutiveFailures: 4, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTaskService(ctx, svc))

	require.NoError(t, m.Check(ctx, svc.ID))

	got, err := store.GetTaskService(ctx, svc.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.ConsecutiveFailures)
}

func TestMonitorCheckIncrementsOnFailure(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMonitor(t, stubChecker{result: health.Result{Healthy: false, CheckedAt: time.Now()}})

	svc := &types.TaskService{ID: "TS_00000002", URL: "http://x", ConsecutiveFailures: 0, CreatedAt: time.Now()}
	require.NoError(t, store.CreateTaskService(ctx, svc))

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Check(ctx, svc.ID))
	}

	got, err := store.GetTaskService(ctx, svc.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.ConsecutiveFailures)
	require.Equal(t, types.HealthDown, got.HealthStatus())
}
