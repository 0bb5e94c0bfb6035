// Package models defines the domain types for Dropnote.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a single scratch note. ID is assigned at creation and never changes.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote returns an empty note with a fresh identifier, stamped with now.
func NewNote(now time.Time) Note {
	return Note{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NoteMeta is the per-note sidecar persisted next to the raw content file.
// Timestamps are stored explicitly so copies and migrations keep them.
type NoteMeta struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
