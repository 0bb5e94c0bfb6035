// Package panel implements the presentation controller: the show/hide state
// machine of the overlay panel anchored under the status icon, global hotkey
// registration, and routing of panel actions to the note model.
//
// All Controller methods must run on the main loop. Callbacks arriving from
// collaborators (animation completion, hotkey presses) are posted there.
package panel

import (
	"log/slog"

	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/settings"
)

// State is the panel visibility state.
type State int

const (
	Hidden State = iota
	Showing
	Visible
	Hiding
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Showing:
		return "showing"
	case Visible:
		return "visible"
	case Hiding:
		return "hiding"
	default:
		return "unknown"
	}
}

// DefaultSize is the panel size used when nothing else is configured.
var DefaultSize = Size{W: 400, H: 400}

// Deps are the controller's collaborators. Launch and SettingsUI may be nil.
type Deps struct {
	Poster     Poster
	Icon       StatusIcon
	Window     Window
	Hotkeys    HotkeyRegistrar
	SettingsUI SettingsSurface
	Launch     LaunchAgent
	Settings   *settings.Store
	Notes      Notes
	Logger     *slog.Logger
}

// Controller drives the panel state machine.
type Controller struct {
	Deps

	defaultSize Size
	gap         int

	state           State
	settingsPending bool
	launchApplied   bool

	unsubscribe func()
	observers   []func(State)
}

// New creates a controller. defaultSize applies until the user resizes the
// panel; gap is the vertical distance between icon and panel.
func New(deps Deps, defaultSize Size, gap int) *Controller {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if defaultSize.W <= 0 || defaultSize.H <= 0 {
		defaultSize = DefaultSize
	}
	return &Controller{
		Deps:        deps,
		defaultSize: defaultSize,
		gap:         gap,
	}
}

// Start registers the hotkey from the current settings and subscribes to
// settings changes.
func (c *Controller) Start() {
	current := c.Settings.Current()
	c.registerHotkey(current)
	if c.Launch != nil {
		c.launchApplied = c.Launch.Enabled()
		c.applyLaunch(current)
	}
	c.unsubscribe = c.Settings.Subscribe(func(s models.Settings) {
		c.Poster.Post(func() { c.applySettings(s) })
	})
}

// Stop unsubscribes from settings, releases the hotkey and flushes the model.
func (c *Controller) Stop() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.Hotkeys.Unregister()
	c.Notes.Flush()
}

// State returns the current visibility state.
func (c *Controller) State() State { return c.state }

// OnStateChange registers fn to be called after every transition.
func (c *Controller) OnStateChange(fn func(State)) {
	c.observers = append(c.observers, fn)
}

// StatusIconActivated handles a click on the status icon.
func (c *Controller) StatusIconActivated() { c.toggle() }

// HotkeyFired handles the global hotkey.
func (c *Controller) HotkeyFired() { c.toggle() }

// Open shows the panel if it is hidden.
func (c *Controller) Open() {
	if c.state == Hidden {
		c.show()
	}
}

// OutsidePointer handles a pointer press outside the panel. A pinned panel
// stays open.
func (c *Controller) OutsidePointer() {
	if c.state == Visible && !c.Settings.Current().IsPinned {
		c.hide()
	}
}

// Dismiss handles the dismiss key.
func (c *Controller) Dismiss() {
	if c.state == Visible {
		c.hide()
	}
}

// OpenSettings closes the panel and then shows the settings surface, so the
// two are never on screen together.
func (c *Controller) OpenSettings() {
	switch c.state {
	case Hidden:
		c.showSettings()
	case Showing, Visible:
		c.settingsPending = true
		c.hide()
	case Hiding:
		c.settingsPending = true
	}
}

// TogglePin flips the pin flag.
func (c *Controller) TogglePin() {
	pinned := !c.Settings.Current().IsPinned
	c.Settings.SetPinned(pinned)
}

// StatusIconPinToggled flips the pin flag from the status icon; unpinning a
// visible panel closes it.
func (c *Controller) StatusIconPinToggled() {
	pinned := !c.Settings.Current().IsPinned
	c.Settings.SetPinned(pinned)
	if !pinned && c.state == Visible {
		c.hide()
	}
}

// Resized re-anchors a visible panel at its new size and remembers the size.
func (c *Controller) Resized(size Size) {
	if c.state != Visible || size.W <= 0 || size.H <= 0 {
		return
	}
	c.Window.SetFrame(anchor(c.Icon.Frame(), size, c.Icon.Screen(), c.gap))
	c.Settings.SetPanelSize(size.W, size.H)
}

// Previous routes the "previous note" action.
func (c *Controller) Previous() { c.Notes.GoToPrevious() }

// Next routes the "next note" action.
func (c *Controller) Next() { c.Notes.GoToNext() }

// NewNote routes the "new note" action.
func (c *Controller) NewNote() { c.Notes.CreateNote() }

// DeleteNote routes the "delete note" action.
func (c *Controller) DeleteNote() { c.Notes.DeleteCurrentNote() }

// Edit routes a content change from the text surface.
func (c *Controller) Edit(text string) { c.Notes.SetCurrentContent(text) }

// Frame returns where the panel would be placed right now.
func (c *Controller) Frame() Rect {
	return anchor(c.Icon.Frame(), c.size(), c.Icon.Screen(), c.gap)
}

func (c *Controller) toggle() {
	switch c.state {
	case Hidden:
		c.show()
	case Visible:
		c.hide()
	default:
		c.Logger.Debug("panel: toggle ignored mid-animation", slog.String("state", c.state.String()))
	}
}

func (c *Controller) show() {
	c.setState(Showing)
	c.Window.Show(c.Frame(), func() {
		c.Poster.Post(c.showCompleted)
	})
}

func (c *Controller) showCompleted() {
	if c.state == Showing {
		c.setState(Visible)
	}
}

func (c *Controller) hide() {
	c.Notes.Flush()
	c.setState(Hiding)
	c.Window.Hide(func() {
		c.Poster.Post(c.hideCompleted)
	})
}

func (c *Controller) hideCompleted() {
	if c.state != Hiding {
		return
	}
	c.setState(Hidden)
	if c.settingsPending {
		c.showSettings()
	}
}

func (c *Controller) showSettings() {
	c.settingsPending = false
	if c.SettingsUI != nil {
		c.SettingsUI.Show()
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.Logger.Debug("panel: transition",
		slog.String("from", c.state.String()),
		slog.String("to", s.String()))
	c.state = s
	for _, fn := range c.observers {
		fn(s)
	}
}

func (c *Controller) size() Size {
	s := c.Settings.Current()
	if s.PanelWidth > 0 && s.PanelHeight > 0 {
		return Size{W: s.PanelWidth, H: s.PanelHeight}
	}
	return c.defaultSize
}

func (c *Controller) applySettings(s models.Settings) {
	c.registerHotkey(s)
	c.applyLaunch(s)
}

// registerHotkey replaces the hotkey binding. There is no in-place update:
// the old binding is always released first. Failures leave the hotkey
// unbound until the settings change again.
func (c *Controller) registerHotkey(s models.Settings) {
	c.Hotkeys.Unregister()
	if !s.HotkeyEnabled {
		return
	}
	hk := s.Hotkey()
	if err := c.Hotkeys.Register(hk, func() { c.Poster.Post(c.HotkeyFired) }); err != nil {
		c.Logger.Debug("panel: hotkey registration failed",
			slog.String("hotkey", hk.String()),
			slog.String("error", err.Error()))
	}
}

func (c *Controller) applyLaunch(s models.Settings) {
	if c.Launch == nil || s.LaunchAtStartup == c.launchApplied {
		return
	}
	if err := c.Launch.SetEnabled(s.LaunchAtStartup); err != nil {
		c.Logger.Warn("panel: launch at startup update failed", slog.String("error", err.Error()))
		return
	}
	c.launchApplied = s.LaunchAtStartup
}
