// Package fsm implements the two coupled state machines from spec §4.3 and
// §4.4: the per-task lifecycle and the release lifecycle. Both share one
// shape — validate the edge, persist the new state, append an Event, hand
// the Event to the emitter, all inside one atomic store operation — per
// the explicit transition() primitive called for in spec §9.
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

// taskEdge is one allowed transition of the task FSM.
type taskEdge struct {
	action string
	from   map[types.TaskState]bool
	to     types.TaskState
}

func states(ss ...types.TaskState) map[types.TaskState]bool {
	m := make(map[types.TaskState]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// allTaskStates is used for the "any source" edges (fail, cancel).
var allTaskStates = states(
	types.TaskWaiting, types.TaskInitialized, types.TaskRunning,
	types.TaskStaged, types.TaskPublishing, types.TaskPublished,
	types.TaskRejected, types.TaskFailed, types.TaskCanceled,
)

var taskEdges = []taskEdge{
	{action: "initialize", from: states(types.TaskWaiting), to: types.TaskInitialized},
	{action: "start", from: states(types.TaskInitialized), to: types.TaskRunning},
	{action: "stage", from: states(types.TaskRunning), to: types.TaskStaged},
	{action: "publish", from: states(types.TaskStaged), to: types.TaskPublishing},
	{action: "complete", from: states(types.TaskPublishing), to: types.TaskPublished},
	{action: "reject", from: states(types.TaskWaiting), to: types.TaskRejected},
	{action: "fail", from: allTaskStates, to: types.TaskFailed},
	{action: "cancel", from: allTaskStates, to: types.TaskCanceled},
}

func lookupTaskEdge(action string, from types.TaskState) (taskEdge, bool) {
	for _, e := range taskEdges {
		if e.action == action && e.from[from] {
			return e, true
		}
	}
	return taskEdge{}, false
}

// TaskActionForTarget reverse-looks-up the action that would move a task in
// state `from` to state `to`, e.g. used by the PATCH-driven update path
// (spec §6: "PATCH with {state, progress} ... mirrors the poll path but is
// service-pushed") to translate a reported state into an FSM action.
func TaskActionForTarget(from, to types.TaskState) (string, bool) {
	for _, e := range taskEdges {
		if e.to == to && e.from[from] {
			return e.action, true
		}
	}
	return "", false
}

// TaskMachine drives the task lifecycle: it validates transitions, persists
// the new state, and journals the change, all within one store commit.
type TaskMachine struct {
	store   storage.Store
	journal *events.Journal
}

// NewTaskMachine builds a TaskMachine over the given store and journal.
func NewTaskMachine(store storage.Store, journal *events.Journal) *TaskMachine {
	return &TaskMachine{store: store, journal: journal}
}

// Transition validates and applies action to task, appending an Event
// describing the change. It does not itself contact the task's remote
// service — callers that need to (the phase driver, for initialize/start/
// publish) must do so before calling Transition, since a failed remote
// call must not be recorded as a successful transition.
func (m *TaskMachine) Transition(ctx context.Context, task *types.Task, action string) error {
	edge, ok := lookupTaskEdge(action, task.State)
	if !ok {
		return cerrors.InvalidTransition("task", action, task.State)
	}

	src := task.State
	task.State = edge.to

	evType := types.EventInfo
	if edge.to == types.TaskFailed || edge.to == types.TaskRejected {
		evType = types.EventError
	}

	releaseID, taskID := task.ReleaseID, task.ID
	ev := &types.Event{
		ID:            ids.New(ids.PrefixEvent),
		Type:          evType,
		Message:       fmt.Sprintf("task %s changed from %s to %s", task.ID, src, edge.to),
		ReleaseID:     &releaseID,
		TaskID:        &taskID,
		TaskServiceID: &task.TaskServiceID,
	}

	// State write and Event append commit together (spec §5): otherwise a
	// crash between the two leaves a task whose state changed with no
	// matching Event in the journal.
	return m.store.Atomic(ctx, func(ctx context.Context) error {
		if err := m.store.UpdateTask(ctx, task); err != nil {
			return fmt.Errorf("fsm: persist task %s: %w", task.ID, err)
		}
		return m.journal.Append(ctx, ev)
	})
}
