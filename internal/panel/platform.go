package panel

import "github.com/starford/dropnote/internal/models"

// Rect is a screen rectangle in points, origin top-left, y growing down.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Size is a panel size in points.
type Size struct {
	W, H int
}

// StatusIcon is the clickable icon in the system menu/tray area.
type StatusIcon interface {
	// Frame is the icon's current screen rectangle; the icon may move.
	Frame() Rect
	// Screen is the visible area of the screen holding the icon, or an
	// empty Rect when unknown.
	Screen() Rect
}

// Window is the non-activating overlay panel.
type Window interface {
	// Show places the panel at frame and starts the entry animation. done
	// is called, from any goroutine, when the animation finishes.
	Show(frame Rect, done func())
	// Hide starts the exit animation; done as for Show.
	Hide(done func())
	// SetFrame moves or resizes a visible panel without animation.
	SetFrame(frame Rect)
}

// HotkeyRegistrar binds a system-wide key combination.
type HotkeyRegistrar interface {
	// Register binds hk; fire may be called from any goroutine.
	Register(hk models.Hotkey, fire func()) error
	// Unregister releases the current binding, if any.
	Unregister()
}

// SettingsSurface presents the settings UI.
type SettingsSurface interface {
	Show()
}

// LaunchAgent controls launching at login.
type LaunchAgent interface {
	Enabled() bool
	SetEnabled(enabled bool) error
}

// Poster queues work onto the main loop.
type Poster interface {
	Post(fn func()) bool
}

// Notes is the subset of the note model the controller drives.
type Notes interface {
	GoToPrevious()
	GoToNext()
	CreateNote()
	DeleteCurrentNote()
	SetCurrentContent(text string)
	Flush()
}

// anchor centres a panel of the given size under icon, gap points below it,
// and keeps it inside screen when screen is known.
func anchor(icon Rect, size Size, screen Rect, gap int) Rect {
	r := Rect{
		X: icon.X + icon.W/2 - size.W/2,
		Y: icon.Y + icon.H + gap,
		W: size.W,
		H: size.H,
	}
	if screen.Empty() {
		return r
	}
	if r.X+r.W > screen.X+screen.W {
		r.X = screen.X + screen.W - r.W
	}
	if r.X < screen.X {
		r.X = screen.X
	}
	if r.Y+r.H > screen.Y+screen.H {
		r.Y = screen.Y + screen.H - r.H
	}
	if r.Y < screen.Y {
		r.Y = screen.Y
	}
	return r
}
