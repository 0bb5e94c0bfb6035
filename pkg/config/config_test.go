package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

func (s *sample) Validate() error {
	if s.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "from-env")
	path := writeFile(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Limit: 7}
	if err := Load(path, &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "from-env" || s.Limit != 7 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeFile(t, "limit: -1\n")
	var s sample
	err := Load(path, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "name: [unclosed\n")
	var s sample
	if err := Load(path, &s); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default"}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil || found || s.Name != "default" {
		t.Errorf("found = %v, err = %v, s = %+v", found, err, s)
	}

	bad := sample{Limit: -5}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad); err == nil {
		t.Error("defaults should still be validated")
	}

	path := writeFile(t, "name: file\n")
	found, err = LoadOptional(path, &s)
	if err != nil || !found || s.Name != "file" {
		t.Errorf("found = %v, err = %v, s = %+v", found, err, s)
	}
}
