package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type Handlers struct {
	Health    *HealthHandler
	Lead      *LeadHandler
	Student   *StudentHandler
	Duplicate *DuplicateHandler
	Merge     *MergeHandler
	Funnel    *FunnelHandler
	Trash     *TrashHandler
	Timeline  *TimelineHandler
}

func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.Actor)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/leads", h.Lead.CaptureLead)
	r.Get("/ws/duplicates", h.Duplicate.Watch)
	r.Get("/trash", h.Trash.List)

	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.Student.List)
		r.Post("/", h.Student.Create)
		r.Post("/duplicates/check", h.Duplicate.Check)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Student.Get)
			r.Patch("/", h.Student.Update)
			r.Delete("/", h.Trash.MoveToTrash)
			r.Post("/restore", h.Trash.Restore)
			r.Post("/stage", h.Funnel.MoveStage)
			r.Post("/merge/preview", h.Merge.Preview)
			r.Post("/merge", h.Merge.Execute)

			r.Get("/enrollments", h.Timeline.ListEnrollments)
			r.Post("/enrollments", h.Timeline.AddEnrollment)
			r.Delete("/enrollments/{enrollmentId}", h.Timeline.RemoveEnrollment)
			r.Get("/notes", h.Timeline.ListNotes)
			r.Post("/notes", h.Timeline.AddNote)
			r.Get("/activity", h.Timeline.ListActivity)
		})
	})

	return r
}
