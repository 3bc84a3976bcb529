// internal/app/features/listscreen/routes.go
package listscreen

import (
	"github.com/dalemusser/barangayhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the console screens. Every route requires a staff identity.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireStaff)

	r.Get("/", h.ServeIndex)

	r.Route("/{screen}", func(r chi.Router) {
		r.Get("/", h.ServeScreen)
		r.Get("/rows", h.ServeRows)
		r.Get("/state", h.ServeState)
		r.Delete("/", h.HandleClose)

		r.Post("/search", h.HandleSearch)
		r.Post("/search/flush", h.HandleFlushSearch)
		r.Post("/filter", h.HandleFilter)
		r.Post("/sort", h.HandleSort)
		r.Post("/page", h.HandlePage)
		r.Post("/page-size", h.HandlePageSize)
		r.Post("/refresh", h.HandleRefresh)
		r.Post("/reset", h.HandleReset)
	})
	return r
}
