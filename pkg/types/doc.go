/*
Package types defines the coordinator's persisted entities: TaskService,
Release, Task, and Event. These are the things a release orchestration
actually reasons about — independent of how they are stored (pkg/storage)
or exposed over HTTP (internal/httpapi).

# Entities

TaskService is a registered remote worker endpoint. Its HealthStatus is
derived from ConsecutiveFailures, never stored directly (spec §3, §4.2).

Release is a scheduled data release bundling one or more studies. Its
State moves through the release FSM in pkg/fsm (spec §4.4).

Task is one (Release, TaskService) pairing, created when a Release leaves
waiting and never again for that release (spec §3's snapshot invariant).
Its State moves through the task FSM in pkg/fsm (spec §4.3).

Event is an append-only audit record created as a side effect of a state
transition. ReleaseID/TaskID/TaskServiceID are soft references (nullable
ids, not embedded pointers) so an Event survives deletion of the entity
it describes (spec §9's circular-reference design note).

# State machines

Both ReleaseState and TaskState expose a Terminal method so callers (the
phase driver, the status poller, the cancel-propagation job) can ask
"is there anything left to do here" without duplicating the FSM's edge
list. TaskState additionally exposes TerminalForPoll, the set of states
after which the status poller stops measuring inactivity timeout; unlike
Terminal it includes staged and excludes rejected.
*/
package types
