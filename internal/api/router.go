package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/dropnote/internal/session"
)

// NewRouter creates a chi router with all control routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(s *session.Session, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(s)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/state", h.State)

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Put("/notes/current", h.UpdateCurrent)
	r.Post("/notes/current/append", h.AppendCurrent)
	r.Post("/notes/flush", h.Flush)
	r.Delete("/notes/current", h.DeleteCurrent)
	r.Post("/notes/next", h.Next)
	r.Post("/notes/previous", h.Previous)

	// Panel.
	r.Route("/panel", func(r chi.Router) {
		r.Post("/toggle", h.TogglePanel)
		r.Post("/open", h.OpenPanel)
		r.Post("/hide", h.HidePanel)
		r.Post("/settings", h.OpenSettings)
		r.Post("/hotkey", h.Hotkey)
	})

	// Settings.
	r.Get("/settings", h.Settings)
	r.Put("/settings/data-directory", h.ChangeDataDirectory)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
