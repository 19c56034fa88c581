package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/coordinator/pkg/metrics"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestCollectorStartStop(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateRelease(context.Background(), &types.Release{ID: "RE_00000001", State: types.ReleaseRunning}))

	c := metrics.NewCollector(store)
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Stop()
}
