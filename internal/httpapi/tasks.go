package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type patchTaskRequest struct {
	State    *string `json:"state"`
	Progress int     `json:"progress"`
}

// patchTask is the endpoint real task services call to report their own
// progress, applied immediately through orchestrator.Service.ApplyTaskUpdate
// rather than waiting for the next status-poll tick (spec §6). State is
// optional — a progress-only PATCH (spec §8 Scenario 1) leaves the task's
// state as-is, mirroring updateTaskService's *bool pattern for Enabled.
func (a *API) patchTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req patchTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	state := req.State
	if state == nil {
		task, err := a.store.GetTask(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		current := string(task.State)
		state = &current
	}

	if err := a.svc.ApplyTaskUpdate(r.Context(), id, *state, req.Progress); err != nil {
		writeError(w, err)
		return
	}

	task, err := a.store.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
