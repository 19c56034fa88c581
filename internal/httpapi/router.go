// Package httpapi exposes the coordinator's REST surface (spec §5):
// task-service registration, release lifecycle operations, the task PATCH
// endpoint task services use to report progress, and a live activity feed.
// The router is built on chi the way the rest of the ecosystem's HTTP
// services are, in place of warren's gRPC+mTLS transport (pkg/api), which
// has no REST equivalent to adapt.
package httpapi

import (
	"net/http"
	"time"

	"github.com/cuemby/coordinator/pkg/events"
	"github.com/cuemby/coordinator/pkg/orchestrator"
	"github.com/cuemby/coordinator/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API holds the dependencies every handler needs.
type API struct {
	svc     *orchestrator.Service
	store   storage.Store
	journal *events.Journal
}

// New builds an API and mounts its routes onto a fresh chi.Mux.
func New(svc *orchestrator.Service, store storage.Store, journal *events.Journal) http.Handler {
	a := &API{svc: svc, store: store, journal: journal}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/task-services", func(r chi.Router) {
		r.Post("/", a.createTaskService)
		r.Get("/", a.listTaskServices)
		r.Post("/health-check", a.triggerHealthSweep)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getTaskService)
			r.Patch("/", a.updateTaskService)
			r.Delete("/", a.deleteTaskService)
		})
	})

	r.Route("/releases", func(r chi.Router) {
		r.Post("/", a.createRelease)
		r.Get("/", a.listReleases)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getRelease)
			r.Post("/publish", a.publishRelease)
			r.Post("/cancel", a.cancelRelease)
			r.Get("/tasks", a.listReleaseTasks)
			r.Get("/events", a.listReleaseEvents)
			r.Get("/release-notes", a.getReleaseNotes)
		})
	})

	r.Route("/tasks/{id}", func(r chi.Router) {
		r.Patch("/", a.patchTask)
	})

	r.Get("/events/stream", a.streamEvents)

	return r
}
