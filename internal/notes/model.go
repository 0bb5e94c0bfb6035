// Package notes implements the in-memory note navigation model: an ordered
// list of notes, the current position, and debounced persistence of edits.
//
// A Model is not safe for concurrent use. It is owned by the main loop and
// every method must be called from it.
package notes

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/dropnote/internal/loop"
	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/storage"
)

// DefaultSaveDelay is the quiet period after the last edit before it is saved.
const DefaultSaveDelay = 500 * time.Millisecond

// Scheduler runs fn on the model's goroutine after d. The main loop
// implements it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) loop.Timer
}

// Option configures a Model.
type Option func(*Model)

// WithSaveDelay sets the debounce window for content edits.
func WithSaveDelay(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// Model holds the ordered notes and the current index.
//
// Invariant after Load: len(notes) >= 1 and 0 <= index < len(notes).
type Model struct {
	store  storage.Provider
	sched  Scheduler
	delay  time.Duration
	now    func() time.Time
	logger *slog.Logger

	notes []models.Note
	index int

	// pending is the debounced save, nil when nothing is waiting.
	// gen invalidates callbacks of timers that were stopped too late.
	pending loop.Timer
	gen     uint64
}

// New creates a model. Call Load before use.
func New(store storage.Provider, sched Scheduler, opts ...Option) *Model {
	m := &Model{
		store:  store,
		sched:  sched,
		delay:  DefaultSaveDelay,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads state and notes from storage and reconciles them.
func (m *Model) Load() {
	state := m.store.LoadState()

	if len(state.NoteIDs) == 0 {
		m.notes = []models.Note{models.NewNote(m.now())}
		m.index = 0
		m.save()
		m.logger.Info("notes: bootstrapped first note")
		return
	}

	m.notes = m.store.LoadAllNotes(state.NoteIDs)
	if len(m.notes) == 0 {
		m.logger.Warn("notes: no referenced note could be loaded",
			slog.Int("referenced", len(state.NoteIDs)))
		m.notes = []models.Note{models.NewNote(m.now())}
		m.index = 0
		return
	}
	if dropped := len(state.NoteIDs) - len(m.notes); dropped > 0 {
		m.logger.Warn("notes: dropped missing notes", slog.Int("count", dropped))
	}
	m.index = max(0, min(state.CurrentIndex, len(m.notes)-1))
	m.logger.Debug("notes: loaded",
		slog.Int("count", len(m.notes)),
		slog.Int("index", m.index))
}

// Reload cancels any pending save and loads again. Used when the storage
// directory changed underneath the model.
func (m *Model) Reload() {
	m.cancelPending()
	m.Load()
}

// CurrentNote returns the selected note, or false if the index is invalid.
func (m *Model) CurrentNote() (models.Note, bool) {
	if m.index < 0 || m.index >= len(m.notes) {
		return models.Note{}, false
	}
	return m.notes[m.index], true
}

// CurrentContent returns the selected note's content, or "".
func (m *Model) CurrentContent() string {
	n, ok := m.CurrentNote()
	if !ok {
		return ""
	}
	return n.Content
}

// SetCurrentContent replaces the selected note's content and schedules a
// debounced save.
func (m *Model) SetCurrentContent(text string) {
	if m.index < 0 || m.index >= len(m.notes) {
		return
	}
	m.notes[m.index].Content = text
	m.notes[m.index].UpdatedAt = m.now()
	m.scheduleSave()
}

// GoToPrevious selects the previous note.
func (m *Model) GoToPrevious() {
	if !m.CanGoPrevious() {
		return
	}
	m.Flush()
	m.index--
	m.store.SaveState(m.state())
}

// GoToNext selects the next note.
func (m *Model) GoToNext() {
	if !m.CanGoNext() {
		return
	}
	m.Flush()
	m.index++
	m.store.SaveState(m.state())
}

// CreateNote appends an empty note and selects it.
func (m *Model) CreateNote() {
	m.Flush()
	note := models.NewNote(m.now())
	m.notes = append(m.notes, note)
	m.index = len(m.notes) - 1
	m.store.SaveNote(note)
	m.store.SaveState(m.state())
}

// DeleteCurrentNote removes the selected note from storage and memory. The
// selection stays at the same index (the next note) or moves to the new
// last note. Deleting the only note leaves a fresh empty one.
func (m *Model) DeleteCurrentNote() {
	note, ok := m.CurrentNote()
	if !ok {
		return
	}
	m.Flush()

	m.store.DeleteNote(note.ID)
	m.notes = append(m.notes[:m.index:m.index], m.notes[m.index+1:]...)

	if len(m.notes) == 0 {
		fresh := models.NewNote(m.now())
		m.notes = []models.Note{fresh}
		m.index = 0
		m.store.SaveNote(fresh)
	} else {
		m.index = min(m.index, len(m.notes)-1)
	}
	m.store.SaveState(m.state())
}

// Flush saves a pending edit immediately.
func (m *Model) Flush() {
	if m.pending == nil {
		return
	}
	m.cancelPending()
	m.save()
}

// Close flushes pending work; the model must not be used afterwards.
func (m *Model) Close() {
	m.Flush()
}

// BeforeRelocate flushes pending edits against the current directory.
func (m *Model) BeforeRelocate() { m.Flush() }

// AfterRelocate reloads from the new directory.
func (m *Model) AfterRelocate() { m.Reload() }

// CanGoPrevious reports whether GoToPrevious would move.
func (m *Model) CanGoPrevious() bool {
	return len(m.notes) > 1 && m.index > 0
}

// CanGoNext reports whether GoToNext would move.
func (m *Model) CanGoNext() bool {
	return len(m.notes) > 1 && m.index < len(m.notes)-1
}

// PositionText returns a label like "2 of 5".
func (m *Model) PositionText() string {
	if len(m.notes) == 0 {
		return "0 of 0"
	}
	return fmt.Sprintf("%d of %d", m.index+1, len(m.notes))
}

// Count returns the number of notes.
func (m *Model) Count() int { return len(m.notes) }

// Index returns the current index.
func (m *Model) Index() int { return m.index }

// Dirty reports whether an edit is waiting to be saved.
func (m *Model) Dirty() bool { return m.pending != nil }

// Notes returns a copy of the ordered notes.
func (m *Model) Notes() []models.Note {
	out := make([]models.Note, len(m.notes))
	copy(out, m.notes)
	return out
}

func (m *Model) state() models.AppState {
	ids := make([]string, len(m.notes))
	for i, n := range m.notes {
		ids[i] = n.ID
	}
	return models.AppState{NoteIDs: ids, CurrentIndex: m.index, Version: models.StateVersion}
}

// save persists the state and the current note.
func (m *Model) save() {
	m.store.SaveState(m.state())
	if note, ok := m.CurrentNote(); ok {
		m.store.SaveNote(note)
	}
}

func (m *Model) scheduleSave() {
	m.cancelPending()
	gen := m.gen
	m.pending = m.sched.AfterFunc(m.delay, func() {
		if gen != m.gen || m.pending == nil {
			return
		}
		m.pending = nil
		m.save()
	})
}

func (m *Model) cancelPending() {
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}
