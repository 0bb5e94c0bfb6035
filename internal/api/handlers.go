package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/dropnote/internal/apperr"
	"github.com/starford/dropnote/internal/loop"
	"github.com/starford/dropnote/internal/session"
)

// Handler holds API route handlers.
type Handler struct {
	s *session.Session
}

// NewHandler creates a new Handler.
func NewHandler(s *session.Session) *Handler {
	return &Handler{s: s}
}

// State handles GET /state.
//
//	@Summary		Current note, position and panel state
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	NoteView
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "state", h.s.Snapshot)
}

// ListNotes handles GET /notes.
//
//	@Summary		List notes in navigation order
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.s.Notes(r.Context())
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	if items == nil {
		items = []NoteSummary{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// CreateNote handles POST /notes. The body is optional; given content seeds
// the new note.
//
//	@Summary		Append a new note and select it
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContentRequest	false	"Initial content"
//	@Success		201		{object}	NoteView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	v, err := h.s.CreateWithContent(r.Context(), req.Content)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// UpdateCurrent handles PUT /notes/current.
//
//	@Summary		Replace the current note's content
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContentRequest	true	"New content"
//	@Success		200		{object}	NoteView
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/current [put]
func (h *Handler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	v, err := h.s.SetContent(r.Context(), req.Content)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AppendCurrent handles POST /notes/current/append.
func (h *Handler) AppendCurrent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	v, err := h.s.AppendContent(r.Context(), req.Content)
	if err != nil {
		writeError(w, "append note", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Flush handles POST /notes/flush: a pending edit is saved before the
// response is written.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Flush(r.Context()); err != nil {
		writeError(w, "flush", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCurrent handles DELETE /notes/current.
func (h *Handler) DeleteCurrent(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "delete note", h.s.Delete)
}

// Next handles POST /notes/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "next note", h.s.Next)
}

// Previous handles POST /notes/previous.
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "previous note", h.s.Previous)
}

// TogglePanel handles POST /panel/toggle.
func (h *Handler) TogglePanel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "toggle panel", h.s.TogglePanel)
}

// OpenPanel handles POST /panel/open.
func (h *Handler) OpenPanel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "open panel", h.s.OpenPanel)
}

// HidePanel handles POST /panel/hide.
func (h *Handler) HidePanel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "hide panel", h.s.HidePanel)
}

// OpenSettings handles POST /panel/settings.
func (h *Handler) OpenSettings(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "open settings", h.s.OpenSettings)
}

// Hotkey handles POST /panel/hotkey. External hotkey daemons call it when
// the configured combination is pressed.
func (h *Handler) Hotkey(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "hotkey", h.s.FireHotkey)
}

// Settings handles GET /settings.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	st, err := h.s.Settings()
	if err != nil {
		writeError(w, "settings", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ChangeDataDirectory handles PUT /settings/data-directory.
//
//	@Summary		Move the data directory, optionally migrating notes
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DataDirectoryRequest	true	"Target directory"
//	@Success		200		{object}	NoteView
//	@Failure		400		{object}	errResponse
//	@Failure		500		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/data-directory [put]
func (h *Handler) ChangeDataDirectory(w http.ResponseWriter, r *http.Request) {
	var req DataDirectoryRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	v, err := h.s.ChangeDataDirectory(r.Context(), req.Path, req.ShouldMigrate())
	if err != nil {
		if errors.Is(err, apperr.ErrMigration) {
			writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
			return
		}
		writeError(w, "change data directory", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context) (session.View, error)) {
	v, err := fn(r.Context())
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("not available"))
	case errors.Is(err, loop.ErrStopped):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("shutting down"))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("request cancelled"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
