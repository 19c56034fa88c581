package metrics

import (
	"context"
	"time"

	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
)

// Collector periodically recomputes the gauge metrics from store state.
// The ticker-driven Start/Stop shape follows warren's pkg/metrics
// Collector, swapped from a cluster manager onto the coordinator's Store.
type Collector struct {
	store  storage.Store
	stopCh chan struct{}
}

// NewCollector builds a Collector over store.
func NewCollector(store storage.Store) *Collector {
	return &Collector{store: store, stopCh: make(chan struct{})}
}

// Start begins collecting metrics every 15 seconds, including one
// immediate collection.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts collection.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx := context.Background()
	c.collectReleaseMetrics(ctx)
	c.collectTaskServiceMetrics(ctx)
}

func (c *Collector) collectReleaseMetrics(ctx context.Context) {
	releases, err := c.store.ListReleases(ctx)
	if err != nil {
		return
	}

	counts := make(map[types.ReleaseState]int)
	for _, r := range releases {
		counts[r.State]++
	}
	for state, count := range counts {
		ReleasesTotal.WithLabelValues(string(state)).Set(float64(count))
	}

	taskCounts := make(map[types.TaskState]int)
	for _, r := range releases {
		tasks, err := c.store.ListTasksByRelease(ctx, r.ID)
		if err != nil {
			continue
		}
		for _, t := range tasks {
			taskCounts[t.State]++
		}
	}
	for state, count := range taskCounts {
		TasksTotal.WithLabelValues(string(state)).Set(float64(count))
	}
}

func (c *Collector) collectTaskServiceMetrics(ctx context.Context) {
	services, err := c.store.ListTaskServices(ctx)
	if err != nil {
		return
	}

	TaskServicesTotal.Set(float64(len(services)))

	down := 0
	for _, s := range services {
		if s.HealthStatus() == types.HealthDown {
			down++
		}
	}
	TaskServicesDown.Set(float64(down))
}
