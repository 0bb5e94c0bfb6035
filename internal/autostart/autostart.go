// Package autostart manages launching dropnote at login through an XDG
// autostart desktop entry.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const entryName = "dropnote.desktop"

// Agent writes or removes the autostart entry.
type Agent struct {
	path string
	exec string
}

// New returns an agent for the entry in dir that launches exec. An empty
// dir means $XDG_CONFIG_HOME/autostart.
func New(dir, exec string) (*Agent, error) {
	if dir == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("autostart: %w", err)
		}
		dir = filepath.Join(cfg, "autostart")
	}
	return &Agent{path: filepath.Join(dir, entryName), exec: exec}, nil
}

// Path is the desktop entry location.
func (a *Agent) Path() string { return a.path }

// Enabled reports whether the entry exists.
func (a *Agent) Enabled() bool {
	_, err := os.Stat(a.path)
	return err == nil
}

// SetEnabled creates or removes the entry.
func (a *Agent) SetEnabled(enabled bool) error {
	if !enabled {
		if err := os.Remove(a.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("autostart: remove entry: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("autostart: create dir: %w", err)
	}
	if err := os.WriteFile(a.path, []byte(a.entry()), 0o644); err != nil {
		return fmt.Errorf("autostart: write entry: %w", err)
	}
	return nil
}

func (a *Agent) entry() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=dropnote\n")
	b.WriteString("Comment=Scratch notes in a panel\n")
	fmt.Fprintf(&b, "Exec=%s\n", quoteExec(a.exec))
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// quoteExec quotes the program path when it contains characters the
// desktop entry Exec key treats specially.
func quoteExec(exec string) string {
	if !strings.ContainsAny(exec, " \t\"'\\$`") {
		return exec
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(exec) + `"`
}
