package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Previous key.Binding
	Next     key.Binding
	New      key.Binding
	Delete   key.Binding
	Preview  key.Binding
	Copy     key.Binding
	CopyLink key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

var keys = keyMap{
	Previous: key.NewBinding(key.WithKeys("alt+left"), key.WithHelp("alt+←", "previous")),
	Next:     key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "next")),
	New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
	Delete:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete")),
	Preview:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "preview")),
	Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
	CopyLink: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "copy link")),
	Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	Confirm:  key.NewBinding(key.WithKeys("y", "Y", "enter")),
	Cancel:   key.NewBinding(key.WithKeys("n", "N", "esc")),
}

func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.New, k.Delete, k.Preview, k.Copy, k.CopyLink, k.Quit}
}
