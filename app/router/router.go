package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wavewall-mockups/app/controller"
)

// Controllers groups the HTTP controllers the router wires up.
type Controllers struct {
	Mockup   *controller.MockupController
	Template *controller.TemplateController
	Cache    *controller.CacheController
}

// New builds the service router.
func New(c *Controllers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/mockups", func(r chi.Router) {
			r.Post("/generate", c.Mockup.Generate)
			r.Get("/preview/{templateID}", c.Mockup.Preview)
			r.Post("/batch", c.Mockup.Batch)
			r.Post("/sheet", c.Mockup.Sheet)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", c.Template.List)
			r.Post("/", c.Template.Create)
			r.Get("/stats", c.Template.Stats)
			r.Post("/reload", c.Template.Reload)
			r.Post("/sync", c.Template.Sync)
			r.Get("/{templateID}", c.Template.Get)
			r.Delete("/{templateID}", c.Template.Delete)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", c.Cache.Stats)
			r.Post("/cleanup", c.Cache.Cleanup)
			r.Delete("/", c.Cache.Clear)
		})

		r.Get("/renders/recent", c.Mockup.RecentRenders)
	})

	return r
}
