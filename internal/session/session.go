// Package session exposes the note model and the panel to other goroutines.
// Every call is marshalled onto the main loop and resulting changes are
// published as events.
package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/dropnote/internal/apperr"
	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/notes"
	"github.com/starford/dropnote/internal/panel"
	"github.com/starford/dropnote/internal/settings"
	"github.com/starford/dropnote/internal/sse"
)

// Runner executes fn on the main loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

// Publisher receives change events.
type Publisher interface {
	Publish(event sse.Event)
	PublishEdit(data any)
}

// View is a snapshot of the current note and its position.
type View struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Index         int       `json:"index"`
	Count         int       `json:"count"`
	Position      string    `json:"position"`
	CanGoPrevious bool      `json:"canGoPrevious"`
	CanGoNext     bool      `json:"canGoNext"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	// Unsaved is set while an edit waits for the save debounce.
	Unsaved bool   `json:"unsaved"`
	Panel   string `json:"panel,omitempty"`
}

// Summary is one entry of the ordered note list.
type Summary struct {
	ID        string    `json:"id"`
	Preview   string    `json:"preview"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const previewLen = 80

// Session is safe for concurrent use.
type Session struct {
	run      Runner
	model    *notes.Model
	panel    *panel.Controller
	settings *settings.Store
	events   Publisher
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPanel attaches the presentation controller. Without it panel
// operations return apperr.ErrUnavailable.
func WithPanel(c *panel.Controller) Option {
	return func(s *Session) { s.panel = c }
}

// WithSettings attaches the settings store, enabling data directory changes
// and settings.changed events.
func WithSettings(st *settings.Store) Option {
	return func(s *Session) { s.settings = st }
}

// WithPublisher sets the event sink.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session over a loaded model. Construct it on the loop
// goroutine or before the loop starts: it registers observers on the panel.
func New(run Runner, model *notes.Model, opts ...Option) *Session {
	s := &Session{
		run:    run,
		model:  model,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events != nil && s.panel != nil {
		s.panel.OnStateChange(func(st panel.State) {
			s.events.Publish(sse.Event{Type: sse.EventPanelState, Data: map[string]string{"state": st.String()}})
		})
	}
	if s.events != nil && s.settings != nil {
		s.settings.Subscribe(func(st models.Settings) {
			s.events.Publish(sse.Event{Type: sse.EventSettingsChanged, Data: st})
		})
	}
	return s
}

// view must run on the loop.
func (s *Session) view() View {
	v := View{
		Index:         s.model.Index(),
		Count:         s.model.Count(),
		Position:      s.model.PositionText(),
		CanGoPrevious: s.model.CanGoPrevious(),
		CanGoNext:     s.model.CanGoNext(),
		Unsaved:       s.model.Dirty(),
	}
	if n, ok := s.model.CurrentNote(); ok {
		v.ID = n.ID
		v.Content = n.Content
		v.CreatedAt = n.CreatedAt
		v.UpdatedAt = n.UpdatedAt
	}
	if s.panel != nil {
		v.Panel = s.panel.State().String()
	}
	return v
}

// Snapshot returns the current note and position.
func (s *Session) Snapshot(ctx context.Context) (View, error) {
	var v View
	err := s.run.Do(ctx, func() error {
		v = s.view()
		return nil
	})
	return v, err
}

// Notes lists all notes in order.
func (s *Session) Notes(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.run.Do(ctx, func() error {
		idx := s.model.Index()
		for i, n := range s.model.Notes() {
			out = append(out, Summary{
				ID:        n.ID,
				Preview:   preview(n.Content),
				Current:   i == idx,
				CreatedAt: n.CreatedAt,
				UpdatedAt: n.UpdatedAt,
			})
		}
		return nil
	})
	return out, err
}

// SetContent replaces the current note's text.
func (s *Session) SetContent(ctx context.Context, text string) (View, error) {
	return s.edit(ctx, func() { s.model.SetCurrentContent(text) })
}

// AppendContent appends text to the current note on a new line.
func (s *Session) AppendContent(ctx context.Context, text string) (View, error) {
	return s.edit(ctx, func() {
		cur := s.model.CurrentContent()
		if cur != "" && !strings.HasSuffix(cur, "\n") {
			cur += "\n"
		}
		s.model.SetCurrentContent(cur + text)
	})
}

// Previous selects the previous note.
func (s *Session) Previous(ctx context.Context) (View, error) {
	return s.navigate(ctx, s.model.GoToPrevious)
}

// Next selects the next note.
func (s *Session) Next(ctx context.Context) (View, error) {
	return s.navigate(ctx, s.model.GoToNext)
}

// Create appends an empty note and selects it.
func (s *Session) Create(ctx context.Context) (View, error) {
	return s.navigate(ctx, s.model.CreateNote)
}

// CreateWithContent appends a note seeded with text and selects it. Both
// steps run in one loop task so no other writer lands in between.
func (s *Session) CreateWithContent(ctx context.Context, text string) (View, error) {
	return s.navigate(ctx, func() {
		s.model.CreateNote()
		if text != "" {
			s.model.SetCurrentContent(text)
		}
	})
}

// Delete removes the current note.
func (s *Session) Delete(ctx context.Context) (View, error) {
	return s.navigate(ctx, s.model.DeleteCurrentNote)
}

// Flush saves a pending edit now.
func (s *Session) Flush(ctx context.Context) error {
	return s.run.Do(ctx, func() error {
		s.model.Flush()
		return nil
	})
}

// TogglePanel acts like a status icon click.
func (s *Session) TogglePanel(ctx context.Context) (View, error) {
	return s.withPanel(ctx, (*panel.Controller).StatusIconActivated)
}

// OpenPanel shows the panel if hidden.
func (s *Session) OpenPanel(ctx context.Context) (View, error) {
	return s.withPanel(ctx, (*panel.Controller).Open)
}

// HidePanel dismisses a visible panel.
func (s *Session) HidePanel(ctx context.Context) (View, error) {
	return s.withPanel(ctx, (*panel.Controller).Dismiss)
}

// OpenSettings closes the panel and shows the settings surface.
func (s *Session) OpenSettings(ctx context.Context) (View, error) {
	return s.withPanel(ctx, (*panel.Controller).OpenSettings)
}

// FireHotkey delivers a global hotkey press from an external source.
func (s *Session) FireHotkey(ctx context.Context) (View, error) {
	return s.withPanel(ctx, (*panel.Controller).HotkeyFired)
}

// Settings returns the current settings.
func (s *Session) Settings() (models.Settings, error) {
	if s.settings == nil {
		return models.Settings{}, apperr.ErrUnavailable
	}
	return s.settings.Current(), nil
}

// ChangeDataDirectory moves the data directory ("" restores the default),
// optionally migrating existing notes. The model is flushed before and
// reloaded after the switch.
func (s *Session) ChangeDataDirectory(ctx context.Context, path string, migrate bool) (View, error) {
	if s.settings == nil {
		return View{}, apperr.ErrUnavailable
	}
	var v View
	err := s.run.Do(ctx, func() error {
		if err := s.settings.UpdateDataDirectory(path, migrate); err != nil {
			return err
		}
		v = s.view()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.publish(sse.EventNoteChanged, v)
	return v, nil
}

func (s *Session) edit(ctx context.Context, fn func()) (View, error) {
	var v View
	err := s.run.Do(ctx, func() error {
		fn()
		v = s.view()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	if s.events != nil {
		s.events.PublishEdit(v)
	}
	return v, nil
}

func (s *Session) navigate(ctx context.Context, fn func()) (View, error) {
	var v View
	err := s.run.Do(ctx, func() error {
		fn()
		v = s.view()
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.publish(sse.EventNoteChanged, v)
	return v, nil
}

func (s *Session) withPanel(ctx context.Context, fn func(*panel.Controller)) (View, error) {
	if s.panel == nil {
		return View{}, apperr.ErrUnavailable
	}
	var v View
	err := s.run.Do(ctx, func() error {
		fn(s.panel)
		v = s.view()
		return nil
	})
	return v, err
}

func (s *Session) publish(kind string, data any) {
	if s.events != nil {
		s.events.Publish(sse.Event{Type: kind, Data: data})
	}
}

func preview(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	r := []rune(line)
	if len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return line
}
