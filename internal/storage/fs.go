package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/starford/dropnote/internal/apperr"
	"github.com/starford/dropnote/internal/models"
)

const (
	notesDirName     = "notes"
	stateFileName    = "state.json"
	settingsFileName = "settings.json"
	noteExt          = ".txt"
	metaExt          = ".meta.json"
)

// FS implements Provider, SettingsPersister and Relocator on the local file
// system. Settings live in the fixed config root; notes and state live in the
// data directory, which may be relocated.
type FS struct {
	root         string // config root, holds settings.json
	settingsPath string
	logger       *slog.Logger

	// mu guards the data directory pointer. I/O holds the read lock so a
	// directory swap waits for in-flight reads and writes.
	mu       sync.RWMutex
	dataDir  string
	notesDir string
	state    string
}

// NewFS creates an FS rooted at the given config directory, creating it if
// needed, and resolves the data directory from persisted settings.
func NewFS(root string, logger *slog.Logger) (*FS, error) {
	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	f := &FS{
		root:         abs,
		settingsPath: filepath.Join(abs, settingsFileName),
		logger:       logger,
	}
	f.ReloadDataDirectory()
	return f, nil
}

// SettingsPath returns the absolute path of settings.json.
func (f *FS) SettingsPath() string {
	return f.settingsPath
}

// DefaultDataDirectory returns the data directory used without an override.
func (f *FS) DefaultDataDirectory() string {
	return filepath.Join(f.root, "data")
}

// ResolveDataDirectory maps an override to an absolute directory.
func (f *FS) ResolveDataDirectory(override string) string {
	if strings.TrimSpace(override) == "" {
		return f.DefaultDataDirectory()
	}
	abs, err := filepath.Abs(expandHome(override))
	if err != nil {
		return filepath.Clean(override)
	}
	return abs
}

// DataDirectory returns the directory currently in use.
func (f *FS) DataDirectory() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dataDir
}

// ReloadDataDirectory re-resolves the data directory from persisted settings
// and swaps the internal paths.
func (f *FS) ReloadDataDirectory() {
	dir := f.ResolveDataDirectory(f.LoadSettings().DataDirectory)

	f.mu.Lock()
	f.dataDir = dir
	f.notesDir = filepath.Join(dir, notesDirName)
	f.state = filepath.Join(dir, stateFileName)
	f.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(dir, notesDirName), 0o755); err != nil {
		f.logger.Warn("storage: create notes dir failed",
			slog.String("path", dir), slog.String("error", err.Error()))
	}
	f.logger.Debug("storage: data directory", slog.String("path", dir))
}

// LoadState reads state.json; a missing or undecodable file yields the default.
func (f *FS) LoadState() models.AppState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.state)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("storage: read state failed", slog.String("error", err.Error()))
		}
		return models.DefaultAppState()
	}
	var state models.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		f.logger.Warn("storage: decode state failed", slog.String("error", err.Error()))
		return models.DefaultAppState()
	}
	state.Normalize()
	return state
}

// SaveState atomically replaces state.json.
func (f *FS) SaveState(state models.AppState) {
	state.Normalize()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		f.logger.Warn("storage: encode state failed", slog.String("error", err.Error()))
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := writeFileAtomic(f.state, data); err != nil {
		f.logger.Warn("storage: save state failed", slog.String("error", err.Error()))
	}
}

// LoadNote reads the note's content file and timestamp sidecar. Timestamps
// fall back to the content file's modification time when the sidecar is
// missing or unreadable.
func (f *FS) LoadNote(id string) (models.Note, bool) {
	if err := validateID(id); err != nil {
		return models.Note{}, false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	contentPath, metaPath := f.notePaths(id)
	data, err := os.ReadFile(contentPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("storage: read note failed",
				slog.String("id", id), slog.String("error", err.Error()))
		}
		return models.Note{}, false
	}

	note := models.Note{ID: id, Content: string(data)}
	if meta, ok := readMeta(metaPath); ok {
		note.CreatedAt = meta.CreatedAt
		note.UpdatedAt = meta.UpdatedAt
	} else if info, err := os.Stat(contentPath); err == nil {
		note.CreatedAt = info.ModTime()
		note.UpdatedAt = info.ModTime()
	}
	return note, true
}

// SaveNote writes the content file, then the timestamp sidecar.
func (f *FS) SaveNote(note models.Note) {
	if err := validateID(note.ID); err != nil {
		f.logger.Warn("storage: save note rejected", slog.String("id", note.ID))
		return
	}
	meta, err := json.Marshal(models.NoteMeta{CreatedAt: note.CreatedAt, UpdatedAt: note.UpdatedAt})
	if err != nil {
		f.logger.Warn("storage: encode note meta failed", slog.String("error", err.Error()))
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	contentPath, metaPath := f.notePaths(note.ID)
	if err := writeFileAtomic(contentPath, []byte(note.Content)); err != nil {
		f.logger.Warn("storage: save note failed",
			slog.String("id", note.ID), slog.String("error", err.Error()))
		return
	}
	if err := writeFileAtomic(metaPath, meta); err != nil {
		f.logger.Warn("storage: save note meta failed",
			slog.String("id", note.ID), slog.String("error", err.Error()))
	}
}

// DeleteNote removes the note's content file and sidecar.
func (f *FS) DeleteNote(id string) {
	if err := validateID(id); err != nil {
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	contentPath, metaPath := f.notePaths(id)
	for _, p := range []string{contentPath, metaPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("storage: delete note failed",
				slog.String("id", id), slog.String("error", err.Error()))
		}
	}
}

// LoadAllNotes loads each id in order, dropping the ones that cannot be read.
func (f *FS) LoadAllNotes(ids []string) []models.Note {
	notes := make([]models.Note, 0, len(ids))
	for _, id := range ids {
		if note, ok := f.LoadNote(id); ok {
			notes = append(notes, note)
		}
	}
	return notes
}

// ReadSettings reads settings.json over the defaults. A missing file yields
// the defaults; an unreadable, undecodable or invalid one is an error.
func (f *FS) ReadSettings() (models.Settings, error) {
	settings := models.DefaultSettings()
	data, err := os.ReadFile(f.settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return models.DefaultSettings(), fmt.Errorf("storage: read settings: %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("storage: decode settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return models.DefaultSettings(), fmt.Errorf("storage: invalid settings: %w", err)
	}
	return settings, nil
}

// LoadSettings is ReadSettings with failures logged and replaced by the
// defaults.
func (f *FS) LoadSettings() models.Settings {
	settings, err := f.ReadSettings()
	if err != nil {
		f.logger.Warn("storage: settings unusable, using defaults", slog.String("error", err.Error()))
	}
	return settings
}

// SaveSettings atomically replaces settings.json.
func (f *FS) SaveSettings(settings models.Settings) {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		f.logger.Warn("storage: encode settings failed", slog.String("error", err.Error()))
		return
	}
	if err := writeFileAtomic(f.settingsPath, data); err != nil {
		f.logger.Warn("storage: save settings failed", slog.String("error", err.Error()))
	}
}

// notePaths returns the content and sidecar paths for id. Caller holds mu.
func (f *FS) notePaths(id string) (string, string) {
	return filepath.Join(f.notesDir, id+noteExt), filepath.Join(f.notesDir, id+metaExt)
}

func readMeta(path string) (models.NoteMeta, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.NoteMeta{}, false
	}
	var meta models.NoteMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.NoteMeta{}, false
	}
	return meta, true
}

// validateID rejects ids that could escape the notes directory.
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || isTempName(id) {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidID, id)
	}
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
