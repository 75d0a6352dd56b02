package handlers

import "github.com/go-chi/chi/v5"

// Routes mounts the library and session endpoints.
func Routes(r chi.Router, libraries *LibraryHandlers, sessions *SessionHandlers) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/libraries/{list}/fields", libraries.Fields)

		r.Post("/sessions", sessions.Open)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Close)
			r.Post("/more", sessions.More)
			r.Post("/sort", sessions.Sort)
			r.Post("/filter", sessions.Filter)
		})
	})

	// HTML grid (full page, or the grid fragment for HTMX partial requests)
	r.Get("/sessions/{id}/grid", sessions.Grid)
}
