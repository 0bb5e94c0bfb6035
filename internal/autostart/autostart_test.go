package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetEnabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	a, err := New(dir, "/usr/bin/dropnote")
	if err != nil {
		t.Fatal(err)
	}
	if a.Enabled() {
		t.Fatal("enabled before creation")
	}

	if err := a.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	if !a.Enabled() {
		t.Fatal("not enabled after SetEnabled(true)")
	}
	data, err := os.ReadFile(a.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Exec=/usr/bin/dropnote\n") {
		t.Errorf("entry = %q", data)
	}

	if err := a.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if a.Enabled() {
		t.Error("still enabled after SetEnabled(false)")
	}
	// Removing twice is fine.
	if err := a.SetEnabled(false); err != nil {
		t.Errorf("second disable: %v", err)
	}
}

func TestDefaultDirFollowsXDG(t *testing.T) {
	cfg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfg)
	a, err := New("", "dropnote")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cfg, "autostart", "dropnote.desktop"); a.Path() != want {
		t.Errorf("path = %q, want %q", a.Path(), want)
	}
}

func TestQuoteExec(t *testing.T) {
	tests := map[string]string{
		"/bin/dropnote":         "/bin/dropnote",
		"/opt/my apps/dropnote": `"/opt/my apps/dropnote"`,
		`/a"b`:                  `"/a\"b"`,
	}
	for in, want := range tests {
		if got := quoteExec(in); got != want {
			t.Errorf("quoteExec(%q) = %q, want %q", in, got, want)
		}
	}
}
