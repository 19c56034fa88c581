package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createTaskServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Author      string `json:"author"`
}

func (a *API) createTaskService(w http.ResponseWriter, r *http.Request) {
	var req createTaskServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	svc, err := a.svc.RegisterTaskService(r.Context(), req.Name, req.Description, req.URL, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

func (a *API) listTaskServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.store.ListTaskServices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

func (a *API) getTaskService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	svc, err := a.store.GetTaskService(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

type updateTaskServiceRequest struct {
	Enabled *bool `json:"enabled"`
}

func (a *API) updateTaskService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateTaskServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "enabled is required"})
		return
	}

	svc, err := a.svc.SetTaskServiceEnabled(r.Context(), id, *req.Enabled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (a *API) deleteTaskService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.DeleteTaskService(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (a *API) triggerHealthSweep(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.TriggerHealthSweep(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}
