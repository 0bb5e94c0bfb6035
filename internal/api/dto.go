package api

import "github.com/starford/dropnote/internal/session"

// ContentRequest is the request body for setting or seeding note content.
type ContentRequest struct {
	Content string `json:"content" example:"groceries: milk, eggs"`
}

// DataDirectoryRequest is the request body for relocating the data directory.
type DataDirectoryRequest struct {
	// Path is the new directory; empty restores the default.
	Path string `json:"path" example:"~/Dropbox/dropnote"`
	// Migrate copies existing notes to Path first. Omitted means true.
	Migrate *bool `json:"migrate,omitempty" example:"true"`
}

// ShouldMigrate reports whether the request asks for migration.
func (r DataDirectoryRequest) ShouldMigrate() bool {
	return r.Migrate == nil || *r.Migrate
}

// NoteView is the current note and its position (aliased from the session layer).
type NoteView = session.View

// NoteSummary is one entry in a list response (aliased from the session layer).
type NoteSummary = session.Summary

// NoteListResponse wraps the ordered note list.
type NoteListResponse struct {
	Notes []NoteSummary `json:"notes" validate:"required"`
	Total int           `json:"total" example:"3" validate:"required"`
}
