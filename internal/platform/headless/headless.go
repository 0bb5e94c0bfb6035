// Package headless provides stand-ins for the OS collaborators of the panel
// so the app can run as a background daemon driven by the control API.
// Animations complete after a fixed delay, and the hotkey registrar only
// records the binding; key presses arrive through the API instead.
package headless

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/panel"
)

// Icon is a status icon at a fixed position.
type Icon struct {
	Rect   panel.Rect
	Bounds panel.Rect
}

func (i Icon) Frame() panel.Rect  { return i.Rect }
func (i Icon) Screen() panel.Rect { return i.Bounds }

// Window simulates the overlay panel.
type Window struct {
	animation time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	frame panel.Rect
	shown bool
}

// NewWindow returns a window whose animations take d.
func NewWindow(d time.Duration, logger *slog.Logger) *Window {
	return &Window{animation: d, logger: logger}
}

func (w *Window) Show(frame panel.Rect, done func()) {
	w.mu.Lock()
	w.frame, w.shown = frame, true
	w.mu.Unlock()
	w.logger.Debug("headless: show panel",
		slog.Int("x", frame.X), slog.Int("y", frame.Y),
		slog.Int("w", frame.W), slog.Int("h", frame.H))
	w.after(done)
}

func (w *Window) Hide(done func()) {
	w.mu.Lock()
	w.shown = false
	w.mu.Unlock()
	w.logger.Debug("headless: hide panel")
	w.after(done)
}

func (w *Window) SetFrame(frame panel.Rect) {
	w.mu.Lock()
	w.frame = frame
	w.mu.Unlock()
}

// Current returns the last frame and whether the panel is on screen.
func (w *Window) Current() (panel.Rect, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame, w.shown
}

func (w *Window) after(done func()) {
	if w.animation <= 0 {
		go done()
		return
	}
	time.AfterFunc(w.animation, done)
}

// Hotkeys records the active binding.
type Hotkeys struct {
	logger *slog.Logger

	mu    sync.Mutex
	hk    models.Hotkey
	fire  func()
	bound bool
}

// NewHotkeys creates an empty registrar.
func NewHotkeys(logger *slog.Logger) *Hotkeys {
	return &Hotkeys{logger: logger}
}

func (h *Hotkeys) Register(hk models.Hotkey, fire func()) error {
	h.mu.Lock()
	h.hk, h.fire, h.bound = hk, fire, true
	h.mu.Unlock()
	h.logger.Info("headless: hotkey bound", slog.String("hotkey", hk.String()))
	return nil
}

func (h *Hotkeys) Unregister() {
	h.mu.Lock()
	h.fire, h.bound = nil, false
	h.mu.Unlock()
}

// Bound returns the active combination.
func (h *Hotkeys) Bound() (models.Hotkey, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hk, h.bound
}

// Press simulates the key combination. It reports whether one was bound.
func (h *Hotkeys) Press() bool {
	h.mu.Lock()
	fire := h.fire
	h.mu.Unlock()
	if fire == nil {
		return false
	}
	fire()
	return true
}

// SettingsSurface logs requests to open the settings UI.
type SettingsSurface struct {
	Logger *slog.Logger
}

func (s SettingsSurface) Show() {
	s.Logger.Info("headless: settings requested")
}
