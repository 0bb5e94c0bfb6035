// Package settings holds the shared, observable settings store.
package settings

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/storage"
)

// Listener is called with the new settings after every change.
type Listener func(models.Settings)

// RelocationHook is notified around a data directory change.
type RelocationHook interface {
	// BeforeRelocate runs before any file is copied; pending writes must land.
	BeforeRelocate()
	// AfterRelocate runs once the new directory is active.
	AfterRelocate()
}

// Store owns the current settings. Every mutation is saved and then
// broadcast to subscribers.
type Store struct {
	persist storage.SettingsPersister
	dirs    storage.Relocator
	logger  *slog.Logger

	mu        sync.Mutex
	current   models.Settings
	listeners map[int]Listener
	nextID    int
	hooks     []RelocationHook

	// relocMu serializes directory changes.
	relocMu sync.Mutex
}

// NewStore loads the settings from persist. dirs may be nil when relocation
// is not needed.
func NewStore(persist storage.SettingsPersister, dirs storage.Relocator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	current, err := persist.ReadSettings()
	if err != nil {
		logger.Warn("settings: using defaults", slog.String("error", err.Error()))
	}
	return &Store{
		persist:   persist,
		dirs:      dirs,
		logger:    logger,
		current:   current,
		listeners: make(map[int]Listener),
	}
}

// Current returns a copy of the settings.
func (s *Store) Current() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// AddRelocationHook registers h for data directory changes.
func (s *Store) AddRelocationHook(h RelocationHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// Update applies fn, saves the result and notifies subscribers.
func (s *Store) Update(fn func(*models.Settings)) models.Settings {
	s.mu.Lock()
	next := s.current
	fn(&next)
	s.current = next
	s.mu.Unlock()

	s.persist.SaveSettings(next)
	s.notify(next)
	return next
}

// Reload re-reads the settings from disk and notifies subscribers when they
// differ from the in-memory copy. An externally edited data directory is
// switched to without migration. A file that cannot be decoded is ignored
// so a half-saved edit does not reset the settings.
func (s *Store) Reload() {
	loaded, err := s.persist.ReadSettings()
	if err != nil {
		s.logger.Warn("settings: reload skipped", slog.String("error", err.Error()))
		return
	}

	s.mu.Lock()
	prev := s.current
	s.current = loaded
	hooks := append([]RelocationHook(nil), s.hooks...)
	s.mu.Unlock()

	if loaded == prev {
		return
	}
	s.logger.Info("settings: reloaded from disk")

	if loaded.DataDirectory != prev.DataDirectory && s.dirs != nil {
		s.relocMu.Lock()
		for _, h := range hooks {
			h.BeforeRelocate()
		}
		s.dirs.ReloadDataDirectory()
		for _, h := range hooks {
			h.AfterRelocate()
		}
		s.relocMu.Unlock()
		s.logger.Info("settings: data directory changed externally",
			slog.String("to", s.dirs.DataDirectory()))
	}

	s.notify(loaded)
}

func (s *Store) notify(next models.Settings) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// SetHotkeyEnabled toggles the global hotkey.
func (s *Store) SetHotkeyEnabled(enabled bool) {
	s.Update(func(st *models.Settings) { st.HotkeyEnabled = enabled })
}

// SetHotkey changes the global key combination.
func (s *Store) SetHotkey(hk models.Hotkey) {
	s.Update(func(st *models.Settings) {
		st.HotkeyKeyCode = hk.KeyCode
		st.HotkeyModifiers = hk.Modifiers
	})
}

// SetLaunchAtStartup toggles launching at login.
func (s *Store) SetLaunchAtStartup(enabled bool) {
	s.Update(func(st *models.Settings) { st.LaunchAtStartup = enabled })
}

// SetPinned sets the panel pin flag.
func (s *Store) SetPinned(pinned bool) {
	s.Update(func(st *models.Settings) { st.IsPinned = pinned })
}

// SetPanelSize remembers the last panel size.
func (s *Store) SetPanelSize(width, height int) {
	s.Update(func(st *models.Settings) {
		st.PanelWidth = width
		st.PanelHeight = height
	})
}

// UpdateDataDirectory switches the data directory to path ("" restores the
// default). With migrate set, notes and state are copied over first; if the
// copy fails the error is returned and the active directory is unchanged.
//
// Sequence: flush hooks, migrate, persist the override, swap the storage
// pointer, reload hooks. Concurrent calls run one at a time.
func (s *Store) UpdateDataDirectory(path string, migrate bool) error {
	if s.dirs == nil {
		return fmt.Errorf("settings: data directory relocation not configured")
	}

	s.relocMu.Lock()
	defer s.relocMu.Unlock()

	s.mu.Lock()
	hooks := append([]RelocationHook(nil), s.hooks...)
	s.mu.Unlock()

	for _, h := range hooks {
		h.BeforeRelocate()
	}

	oldDir := s.dirs.DataDirectory()
	newDir := s.dirs.ResolveDataDirectory(path)

	if migrate && oldDir != newDir {
		if err := s.dirs.MigrateData(oldDir, newDir); err != nil {
			s.logger.Error("settings: data migration failed",
				slog.String("from", oldDir),
				slog.String("to", newDir),
				slog.String("error", err.Error()))
			return err
		}
	}

	s.Update(func(st *models.Settings) { st.DataDirectory = path })
	s.dirs.ReloadDataDirectory()

	for _, h := range hooks {
		h.AfterRelocate()
	}

	s.logger.Info("settings: data directory changed",
		slog.String("from", oldDir),
		slog.String("to", s.dirs.DataDirectory()))
	return nil
}
