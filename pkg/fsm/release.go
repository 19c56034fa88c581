package fsm

import (
	"context"
	"fmt"

	"github.com/cuemby/coordinator/pkg/cerrors"
	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/ids"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/cuemby/coordinator/pkg/types"
)

type releaseEdge struct {
	action string
	from   map[types.ReleaseState]bool
	to     types.ReleaseState
}

func releaseStates(ss ...types.ReleaseState) map[types.ReleaseState]bool {
	m := make(map[types.ReleaseState]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// cancelSources are the release states from which a cancel is allowed
// (spec §4.4).
var cancelSources = releaseStates(
	types.ReleaseWaiting, types.ReleaseInitializing, types.ReleaseRunning,
	types.ReleaseStaged, types.ReleasePublishing,
)

// failSources additionally allow canceling, matching the Python original's
// FAIL_SOURCES = CANCEL_SOURCES + ['canceling'].
var failSources = releaseStates(
	types.ReleaseWaiting, types.ReleaseInitializing, types.ReleaseRunning,
	types.ReleaseStaged, types.ReleasePublishing, types.ReleaseCanceling,
)

var releaseEdges = []releaseEdge{
	{action: "initialize", from: releaseStates(types.ReleaseWaiting), to: types.ReleaseInitializing},
	{action: "start", from: releaseStates(types.ReleaseInitializing), to: types.ReleaseRunning},
	{action: "staged", from: releaseStates(types.ReleaseRunning), to: types.ReleaseStaged},
	{action: "publish", from: releaseStates(types.ReleaseStaged), to: types.ReleasePublishing},
	{action: "complete", from: releaseStates(types.ReleasePublishing), to: types.ReleasePublished},
	{action: "cancel", from: cancelSources, to: types.ReleaseCanceling},
	{action: "canceled", from: releaseStates(types.ReleaseCanceling), to: types.ReleaseCanceled},
	{action: "failed", from: failSources, to: types.ReleaseFailed},
}

func lookupReleaseEdge(action string, from types.ReleaseState) (releaseEdge, bool) {
	for _, e := range releaseEdges {
		if e.action == action && e.from[from] {
			return e, true
		}
	}
	return releaseEdge{}, false
}

// ReleaseActionForTarget mirrors TaskActionForTarget for the release FSM.
func ReleaseActionForTarget(from, to types.ReleaseState) (string, bool) {
	for _, e := range releaseEdges {
		if e.to == to && e.from[from] {
			return e.action, true
		}
	}
	return "", false
}

// ReleaseMachine drives the release lifecycle.
type ReleaseMachine struct {
	store   storage.Store
	journal *events.Journal
}

// NewReleaseMachine builds a ReleaseMachine over the given store and journal.
func NewReleaseMachine(store storage.Store, journal *events.Journal) *ReleaseMachine {
	return &ReleaseMachine{store: store, journal: journal}
}

// Transition validates and applies action to release, appending an Event.
// It never contacts task services directly — that is the task machine's
// and the phase driver's job.
func (m *ReleaseMachine) Transition(ctx context.Context, release *types.Release, action string) error {
	edge, ok := lookupReleaseEdge(action, release.State)
	if !ok {
		return cerrors.InvalidTransition("release", action, release.State)
	}

	src := release.State
	release.State = edge.to

	evType := types.EventInfo
	if edge.to == types.ReleaseFailed {
		evType = types.EventError
	}

	releaseID := release.ID
	ev := &types.Event{
		ID:        ids.New(ids.PrefixEvent),
		Type:      evType,
		Message:   fmt.Sprintf("release %s changed from %s to %s", release.ID, src, edge.to),
		ReleaseID: &releaseID,
	}

	// State write and Event append commit together (spec §5): otherwise a
	// crash between the two leaves a release whose state changed with no
	// matching Event in the journal.
	return m.store.Atomic(ctx, func(ctx context.Context) error {
		if err := m.store.UpdateRelease(ctx, release); err != nil {
			return fmt.Errorf("fsm: persist release %s: %w", release.ID, err)
		}
		return m.journal.Append(ctx, ev)
	})
}

// TryCancel transitions release to canceling if it is in a cancelable
// state, and is a no-op (not an error) otherwise — cancel_release jobs
// must be idempotent against a release that is already canceling, canceled,
// or failed (spec §9 Open Question).
func (m *ReleaseMachine) TryCancel(ctx context.Context, release *types.Release) error {
	if !cancelSources[release.State] {
		return nil
	}
	return m.Transition(ctx, release, "cancel")
}
