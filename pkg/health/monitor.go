package health

import (
	"context"
	"fmt"

	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/ids"
	"github.com/cuemby/coordinator/pkg/log"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
)

// Monitor runs health probes against registered task services and updates
// their consecutive-failure counters (spec §4.2).
type Monitor struct {
	store      storage.Store
	journal    *events.Journal
	newChecker func(url string) Checker
}

// NewMonitor builds a Monitor. Tests may override the checker factory to
// avoid real network calls.
func NewMonitor(store storage.Store, journal *events.Journal) *Monitor {
	return &Monitor{
		store:   store,
		journal: journal,
		newChecker: func(url string) Checker {
			return NewHTTPChecker(url)
		},
	}
}

// WithCheckerFactory overrides how Monitor builds a Checker for a URL.
func (m *Monitor) WithCheckerFactory(f func(url string) Checker) *Monitor {
	m.newChecker = f
	return m
}

// Check probes a single task service and persists the updated failure
// counter. A success resets the counter to zero; any failure increments
// it. Last-write-wins — no locking beyond the store's own update call is
// needed since a single counter only ever moves monotonically between
// sweeps.
func (m *Monitor) Check(ctx context.Context, serviceID string) error {
	svc, err := m.store.GetTaskService(ctx, serviceID)
	if err != nil {
		return err
	}

	result := m.newChecker(svc.URL + "/status").Check(ctx)

	before := svc.HealthStatus()
	if result.Healthy {
		if svc.ConsecutiveFailures > 0 {
			svc.ConsecutiveFailures = 0
			if err := m.store.UpdateTaskService(ctx, svc); err != nil {
				return err
			}
		}
	} else {
		svc.ConsecutiveFailures++
		if err := m.store.UpdateTaskService(ctx, svc); err != nil {
			return err
		}
	}

	log.WithTaskService(svc.ID).Debug().Bool("healthy", result.Healthy).Str("message", result.Message).Msg("health: probe complete")

	if after := svc.HealthStatus(); after != before {
		ev := &types.Event{
			ID:            ids.New(ids.PrefixEvent),
			Type:          types.EventWarning,
			Message:       fmt.Sprintf("task service %s health changed from %s to %s", svc.ID, before, after),
			TaskServiceID: &svc.ID,
		}
		if after == types.HealthOK {
			ev.Type = types.EventInfo
		}
		if err := m.journal.Append(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}
