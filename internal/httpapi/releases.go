package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createReleaseRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	Studies     []string `json:"studies"`
}

func (a *API) createRelease(w http.ResponseWriter, r *http.Request) {
	var req createReleaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	release, err := a.svc.CreateRelease(r.Context(), req.Name, req.Description, req.Author, req.Tags, req.Studies)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, release)
}

func (a *API) listReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := a.store.ListReleases(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, releases)
}

func (a *API) getRelease(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	release, err := a.store.GetRelease(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, release)
}

func (a *API) publishRelease(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.RequestPublish(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (a *API) cancelRelease(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.RequestCancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (a *API) listReleaseTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tasks, err := a.store.ListTasksByRelease(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (a *API) getReleaseNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	notes, err := a.svc.ReleaseNotes(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (a *API) listReleaseEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	evs, err := a.store.ListEventsByRelease(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}
