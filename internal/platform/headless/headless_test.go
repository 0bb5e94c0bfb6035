package headless

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/dropnote/internal/models"
	"github.com/starford/dropnote/internal/panel"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWindowCompletesAnimations(t *testing.T) {
	w := NewWindow(10*time.Millisecond, quietLogger())
	done := make(chan struct{}, 2)

	w.Show(panel.Rect{X: 1, Y: 2, W: 3, H: 4}, func() { done <- struct{}{} })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("show never completed")
	}
	if f, shown := w.Current(); !shown || f.W != 3 {
		t.Errorf("frame = %+v, shown = %v", f, shown)
	}

	w.Hide(func() { done <- struct{}{} })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hide never completed")
	}
	if _, shown := w.Current(); shown {
		t.Error("window still shown")
	}
}

func TestWindowZeroAnimation(t *testing.T) {
	w := NewWindow(0, quietLogger())
	done := make(chan struct{})
	w.Show(panel.Rect{}, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("show never completed")
	}
}

func TestHotkeysPress(t *testing.T) {
	h := NewHotkeys(quietLogger())
	if h.Press() {
		t.Fatal("press with nothing bound")
	}

	fired := 0
	hk := models.Hotkey{KeyCode: 2, Modifiers: models.ModCommand}
	if err := h.Register(hk, func() { fired++ }); err != nil {
		t.Fatal(err)
	}
	if got, ok := h.Bound(); !ok || got != hk {
		t.Errorf("bound = %+v, %v", got, ok)
	}
	h.Press()
	h.Unregister()
	h.Press()
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if _, ok := h.Bound(); ok {
		t.Error("still bound after unregister")
	}
}
