package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/dropnote/pkg/config"
)

func TestControlConfig_DisabledMode(t *testing.T) {
	cfg := ControlConfig{Enabled: true, Port: 7717, Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestControlConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := ControlConfig{Enabled: true, Port: 1}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestControlConfig_TokenModeValid(t *testing.T) {
	cfg := ControlConfig{Enabled: true, Port: 1, Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestControlConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := ControlConfig{Enabled: true, Port: 1, Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestControlConfig_InvalidMode(t *testing.T) {
	cfg := ControlConfig{Enabled: true, Port: 1, Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestControlConfig_PortOnlyRequiredWhenEnabled(t *testing.T) {
	off := ControlConfig{Enabled: false}
	if err := off.Validate(); err != nil {
		t.Errorf("disabled API should not need a port: %v", err)
	}
	on := ControlConfig{Enabled: true, Port: 70000}
	if err := on.Validate(); err == nil {
		t.Error("out of range port should fail")
	}
}

func TestControlConfig_LoopbackAddress(t *testing.T) {
	cfg := ControlConfig{Port: 9000}
	if got := cfg.Address(); got != "127.0.0.1:9000" {
		t.Errorf("address = %q", got)
	}
}

func TestPanelConfig_Bounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Panel.Width = 50
	if err := cfg.Validate(); err == nil {
		t.Error("tiny panel should fail validation")
	}
}

func TestEditorConfig_Bounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Editor.SaveDebounce = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("1ms debounce should fail validation")
	}
}

func TestFullConfig_ControlValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Control.Mode = "token"
	cfg.Control.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  log_level: debug
control:
  port: 9123
  mode: token
  token: ${DROPNOTE_TEST_TOKEN}
editor:
  save_debounce: 250ms
panel:
  animation: 0s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DROPNOTE_TEST_TOKEN", "s3cret")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Control.Port != 9123 || cfg.Control.Token != "s3cret" || !cfg.Control.Enabled {
		t.Errorf("control = %+v", cfg.Control)
	}
	if cfg.Editor.SaveDebounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Editor.SaveDebounce)
	}
	if cfg.Panel.Width != 400 || cfg.Panel.Animation != 0 {
		t.Errorf("panel = %+v", cfg.Panel)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
}
