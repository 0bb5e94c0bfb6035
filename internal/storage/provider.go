// Package storage persists notes, navigation state and settings as files.
package storage

import "github.com/starford/dropnote/internal/models"

// Provider is the storage surface consumed by the note model.
//
// Routine operations never fail from the caller's point of view: reads
// degrade to defaults or "absent", writes that fail are logged and dropped.
type Provider interface {
	// LoadState returns the persisted navigation state, or a default one.
	LoadState() models.AppState
	// SaveState atomically replaces the persisted navigation state.
	SaveState(state models.AppState)
	// LoadNote returns the note with the given id and whether it exists.
	LoadNote(id string) (models.Note, bool)
	// SaveNote atomically writes the note, overwriting any previous version.
	SaveNote(note models.Note)
	// DeleteNote removes the note; deleting a missing note is a no-op.
	DeleteNote(id string)
	// LoadAllNotes loads every id that still has a readable file, in order.
	LoadAllNotes(ids []string) []models.Note
}

// SettingsPersister loads and saves the settings record.
type SettingsPersister interface {
	// ReadSettings returns the persisted settings, or the defaults when
	// nothing is persisted yet. A file that exists but cannot be used is an
	// error.
	ReadSettings() (models.Settings, error)
	SaveSettings(settings models.Settings)
}

// Relocator moves the active data directory.
type Relocator interface {
	// DataDirectory returns the directory currently in use.
	DataDirectory() string
	// ResolveDataDirectory maps a settings override ("" for none) to a directory.
	ResolveDataDirectory(override string) string
	// MigrateData copies notes and state from src into dst.
	MigrateData(src, dst string) error
	// ReloadDataDirectory re-reads the override from settings and switches to it.
	ReloadDataDirectory()
}
