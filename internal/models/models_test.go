package models

import (
	"testing"
	"time"
)

func TestHotkeyString(t *testing.T) {
	cases := []struct {
		hk   Hotkey
		want string
	}{
		{Hotkey{KeyCode: 2, Modifiers: ModCommand | ModShift}, "⇧⌘D"},
		{Hotkey{KeyCode: 49, Modifiers: ModControl | ModOption}, "⌃⌥Space"},
		{Hotkey{KeyCode: 0}, "A"},
		{Hotkey{KeyCode: 999, Modifiers: ModCommand}, "⌘?"},
	}
	for _, c := range cases {
		if got := c.hk.String(); got != c.want {
			t.Errorf("%+v: got %q, want %q", c.hk, got, c.want)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.HotkeyEnabled {
		t.Error("hotkey should be enabled by default")
	}
	if s.Hotkey().String() != "⇧⌘D" {
		t.Errorf("default hotkey = %q", s.Hotkey().String())
	}
	if s.LaunchAtStartup || s.IsPinned || s.DataDirectory != "" {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSettingsValidate_UnknownModifier(t *testing.T) {
	s := DefaultSettings()
	s.HotkeyModifiers |= 1 << 20
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for unknown modifier bits")
	}
}

func TestAppStateNormalize(t *testing.T) {
	s := AppState{NoteIDs: []string{"a", "b"}, CurrentIndex: 5}
	s.Normalize()
	if s.CurrentIndex != 1 {
		t.Errorf("index = %d, want 1", s.CurrentIndex)
	}
	if s.Version != StateVersion {
		t.Errorf("version = %d", s.Version)
	}

	s = AppState{NoteIDs: []string{"a"}, CurrentIndex: -3, Version: 1}
	s.Normalize()
	if s.CurrentIndex != 0 {
		t.Errorf("index = %d, want 0", s.CurrentIndex)
	}

	s = AppState{CurrentIndex: 4}
	s.Normalize()
	if s.NoteIDs == nil || s.CurrentIndex != 0 {
		t.Errorf("empty state not normalized: %+v", s)
	}
}

func TestNewNote(t *testing.T) {
	a := NewNote(time.Now())
	b := NewNote(time.Now())
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids should be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.Content != "" {
		t.Errorf("new note should be empty")
	}
}
