package settings

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_DetectsExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"isPinned": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go Watch(ctx, path, quietLogger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`{"isPinned": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, 25*time.Millisecond, func() bool {
		return calls.Load() == 1
	}, "change not reported")
}

func TestWatch_IgnoresIdenticalRewriteAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	content := []byte(`{"isPinned": true}`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	go Watch(ctx, path, quietLogger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(path, content, 0o644)
	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644)

	time.Sleep(500 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}
