package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Modifier bits of the platform key-combination encoding.
const (
	ModCommand uint32 = 1 << 8
	ModShift   uint32 = 1 << 9
	ModOption  uint32 = 1 << 11
	ModControl uint32 = 1 << 12

	modMask = ModCommand | ModShift | ModOption | ModControl
)

// Settings holds user preferences persisted in settings.json.
type Settings struct {
	HotkeyEnabled   bool   `json:"hotkeyEnabled"`
	HotkeyKeyCode   uint32 `json:"hotkeyKeyCode"`
	HotkeyModifiers uint32 `json:"hotkeyModifiers"`
	LaunchAtStartup bool   `json:"launchAtStartup"`
	// DataDirectory overrides the default data directory when non-empty.
	DataDirectory string `json:"dataDirectory,omitempty"`
	IsPinned      bool   `json:"isPinned"`
	// Last panel size; zero means "use the configured default".
	PanelWidth  int `json:"panelWidth,omitempty"`
	PanelHeight int `json:"panelHeight,omitempty"`
}

// DefaultSettings returns the settings used when nothing is persisted yet:
// hotkey ⇧⌘D enabled, no startup launch, default data directory.
func DefaultSettings() Settings {
	return Settings{
		HotkeyEnabled:   true,
		HotkeyKeyCode:   2,
		HotkeyModifiers: ModCommand | ModShift,
	}
}

// Hotkey returns the configured key combination.
func (s Settings) Hotkey() Hotkey {
	return Hotkey{KeyCode: s.HotkeyKeyCode, Modifiers: s.HotkeyModifiers}
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.HotkeyModifiers, validation.By(func(v any) error {
			if m, _ := v.(uint32); m&^modMask != 0 {
				return validation.NewError("validation_modifiers", "contains unknown modifier bits")
			}
			return nil
		})),
		validation.Field(&s.PanelWidth, validation.Min(0)),
		validation.Field(&s.PanelHeight, validation.Min(0)),
	)
}
