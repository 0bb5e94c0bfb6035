// Package tui is the terminal editing surface: a bubbletea program bound to
// the current note.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/dropnote/internal/highlight"
	"github.com/starford/dropnote/internal/session"
)

// Backend is the note surface the editor drives. *session.Session
// implements it.
type Backend interface {
	Snapshot(ctx context.Context) (session.View, error)
	SetContent(ctx context.Context, text string) (session.View, error)
	Previous(ctx context.Context) (session.View, error)
	Next(ctx context.Context) (session.View, error)
	Create(ctx context.Context) (session.View, error)
	Delete(ctx context.Context) (session.View, error)
	Flush(ctx context.Context) error
}

// Model is the editor state.
type Model struct {
	ctx     context.Context
	backend Backend
	logger  *slog.Logger
	copy    func(string) error

	editor     textarea.Model
	view       session.View
	preview    bool
	confirming bool
	status     string

	width, height int
}

// New loads the current note into a fresh editor.
func New(ctx context.Context, backend Backend, logger *slog.Logger) (*Model, error) {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Placeholder = "Start typing…"
	ta.Focus()

	m := &Model{
		ctx:     ctx,
		backend: backend,
		logger:  logger,
		copy:    clipboard.WriteAll,
		editor:  ta,
	}
	v, err := backend.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("tui: load current note: %w", err)
	}
	m.show(v)
	return m, nil
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, backend Backend, logger *slog.Logger) error {
	m, err := New(ctx, backend, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if flushErr := backend.Flush(context.WithoutCancel(ctx)); flushErr != nil {
		logger.Warn("tui: final flush failed", slog.String("error", flushErr.Error()))
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor.SetWidth(msg.Width)
		m.editor.SetHeight(max(1, msg.Height-3))
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Previous):
			m.apply(m.backend.Previous(m.ctx))
			return m, nil
		case key.Matches(msg, keys.Next):
			m.apply(m.backend.Next(m.ctx))
			return m, nil
		case key.Matches(msg, keys.New):
			m.apply(m.backend.Create(m.ctx))
			m.preview = false
			return m, nil
		case key.Matches(msg, keys.Delete):
			m.confirming = true
			return m, nil
		case key.Matches(msg, keys.Preview):
			m.preview = !m.preview
			return m, nil
		case key.Matches(msg, keys.Copy):
			if err := m.copy(m.editor.Value()); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied"
			}
			return m, nil
		case key.Matches(msg, keys.CopyLink):
			m.copyLink()
			return m, nil
		}
		if m.preview {
			return m, nil
		}
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		v, err := m.backend.SetContent(m.ctx, after)
		if err != nil {
			m.fail(err)
		} else {
			m.view = v
			m.status = ""
		}
	}
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.confirming = false
		m.apply(m.backend.Delete(m.ctx))
	case key.Matches(msg, keys.Cancel):
		m.confirming = false
	}
	return m, nil
}

func (m *Model) apply(v session.View, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.status = ""
	m.show(v)
}

func (m *Model) show(v session.View) {
	m.view = v
	m.editor.SetValue(v.Content)
}

// copyLink copies the URL of the link under the cursor. A cursor resting
// just past the end of a link still counts.
func (m *Model) copyLink() {
	text := m.editor.Value()
	li := m.editor.LineInfo()
	pos := cursorOffset(text, m.editor.Line(), li.StartColumn+li.ColumnOffset)

	url, ok := highlight.LinkAt(text, pos)
	if !ok && pos > 0 {
		url, ok = highlight.LinkAt(text, pos-1)
	}
	if !ok {
		m.status = "no link under cursor"
		return
	}
	if err := m.copy(url); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + url
}

// cursorOffset converts a row and rune column into a byte offset of text.
func cursorOffset(text string, row, col int) int {
	lines := strings.Split(text, "\n")
	off := 0
	for i := 0; i < row && i < len(lines); i++ {
		off += len(lines[i]) + 1
	}
	if row < len(lines) {
		runes := []rune(lines[row])
		off += len(string(runes[:max(0, min(col, len(runes)))]))
	}
	return min(off, len(text))
}

func (m *Model) fail(err error) {
	m.status = "error: " + err.Error()
	m.logger.Error("tui: operation failed", slog.String("error", err.Error()))
}

func (m *Model) View() string {
	position := m.view.Position
	if m.view.Unsaved {
		position += " • unsaved"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styleHeader.Render("dropnote "),
		styleMuted.Render(position))

	var body string
	if m.preview {
		body = stylePreview.Render(renderHighlighted(m.editor.Value()))
	} else {
		body = m.editor.View()
	}

	var footer string
	switch {
	case m.confirming:
		footer = styleDanger.Render("Delete this note? It cannot be recovered. (y/n)")
	case m.status != "":
		footer = styleMuted.Render(m.status)
	default:
		footer = styleMuted.Render(helpLine())
	}
	return strings.Join([]string{header, body, footer}, "\n")
}

func helpLine() string {
	var parts []string
	for _, b := range keys.hints() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
