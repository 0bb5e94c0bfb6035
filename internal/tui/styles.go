package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/dropnote/internal/highlight"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorDanger = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#E5534B"}

	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleDanger  = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	stylePreview = lipgloss.NewStyle().Padding(0, 1)
)

// span flags
const (
	fBold = 1 << iota
	fItalic
	fLink
)

// renderHighlighted styles text with the editor's Markdown subset. Styles
// of overlapping ranges combine.
func renderHighlighted(text string) string {
	if text == "" {
		return ""
	}
	flags := make([]uint8, len(text))
	for _, r := range highlight.Highlight(text) {
		var f uint8
		switch r.Style {
		case highlight.Heading, highlight.Bold:
			f = fBold
		case highlight.Italic:
			f = fItalic
		case highlight.Link:
			f = fLink
		}
		for i := r.Start; i < r.End; i++ {
			flags[i] |= f
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(text); i++ {
		if i < len(text) && flags[i] == flags[start] {
			continue
		}
		writeSpan(&b, text[start:i], flags[start])
		start = i
	}
	return b.String()
}

func writeSpan(b *strings.Builder, s string, f uint8) {
	if f == 0 {
		b.WriteString(s)
		return
	}
	st := lipgloss.NewStyle()
	if f&fBold != 0 {
		st = st.Bold(true)
	}
	if f&fItalic != 0 {
		st = st.Italic(true)
	}
	if f&fLink != 0 {
		st = st.Underline(true).Foreground(colorAccent)
	}
	// Render per line so styles do not bleed across line breaks.
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(st.Render(line))
		}
	}
}
